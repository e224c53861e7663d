// 三种名称模板的语法定义。
package txscript

import (
	btcscript "github.com/btcsuite/btcd/txscript"
)

// 名称字段的长度限制。
const (
	MaxNameLength  = 255  // 名称最大字节数
	MaxValueLength = 1024 // 值最大字节数
	MinNonceLength = 8    // name_firstupdate 随机数最小字节数
	MaxNonceLength = 20   // name_firstupdate 随机数最大字节数
	HashLength     = 20   // 哈希与公钥哈希的字节数
)

// Template 标识一种名称脚本模板。
type Template uint8

const (
	NonNameTy         Template = iota // 不是名称脚本
	NameNewTy                         // name_new
	NameFirstUpdateTy                 // name_firstupdate
	NameUpdateTy                      // name_update
)

var templateToName = []string{
	NonNameTy:         "nonname",
	NameNewTy:         "name_new",
	NameFirstUpdateTy: "name_firstupdate",
	NameUpdateTy:      "name_update",
}

// String 实现 Stringer 接口，返回模板名称。
func (t Template) String() string {
	if int(t) >= len(templateToName) {
		return "Invalid"
	}
	return templateToName[t]
}

// PubKeyHashIndex 返回公钥哈希块在模板中的位置，非名称模板返回 -1。
func (t Template) PubKeyHashIndex() int {
	switch t {
	case NameNewTy:
		return 5
	case NameFirstUpdateTy:
		return 8
	case NameUpdateTy:
		return 7
	}
	return -1
}

// slotKind 是模板中一个位置的类型。
type slotKind uint8

const (
	opcodeSlot slotKind = iota // 固定操作码
	pushSlot                   // 变长数据推送
	hashSlot                   // 固定 20 字节哈希
)

// slot 描述模板中的一个位置。
type slot struct {
	kind     slotKind
	opcode   byte
	min, max int
}

func op(opcode byte) slot {
	return slot{kind: opcodeSlot, opcode: opcode}
}

func push(min, max int) slot {
	return slot{kind: pushSlot, min: min, max: max}
}

var hashField = slot{kind: hashSlot, min: HashLength, max: HashLength}

// p2pkhTail 是三种模板共享的 P2PKH 尾部，公钥哈希位于其中。
var p2pkhTail = []slot{
	op(btcscript.OP_DUP),
	op(btcscript.OP_HASH160),
	hashField,
	op(btcscript.OP_EQUALVERIFY),
	op(btcscript.OP_CHECKSIG),
}

func grammar(prefix ...slot) []slot {
	return append(prefix, p2pkhTail...)
}

// templateGrammars 定义每种模板的块序列。
var templateGrammars = map[Template][]slot{
	NameNewTy: grammar(
		op(OP_NAME_NEW),
		hashField,
		op(btcscript.OP_2DROP),
	),
	NameFirstUpdateTy: grammar(
		op(OP_NAME_FIRSTUPDATE),
		push(0, MaxNameLength),
		push(MinNonceLength, MaxNonceLength),
		push(0, MaxValueLength),
		op(btcscript.OP_2DROP),
		op(btcscript.OP_2DROP),
	),
	NameUpdateTy: grammar(
		op(OP_NAME_UPDATE),
		push(0, MaxNameLength),
		push(0, MaxValueLength),
		op(btcscript.OP_2DROP),
		op(btcscript.OP_DROP),
	),
}

// templatePrecedence 是分类时尝试模板的顺序。
var templatePrecedence = []Template{NameNewTy, NameFirstUpdateTy, NameUpdateTy}

// Len 返回模板的块数量，非名称模板返回 0。
func (t Template) Len() int {
	return len(templateGrammars[t])
}
