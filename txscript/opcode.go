// 名称操作码扩展集合与操作码解析器。
package txscript

import (
	"fmt"
	"strconv"

	btcscript "github.com/btcsuite/btcd/txscript"
)

// 这些常量是 Namecoin 名称操作码的值。
// 它们与 OP_1、OP_2、OP_3 共享数值，名称前缀在执行时只是把一个小整数压入堆栈。
const (
	OP_NAME_NEW         = btcscript.OP_1 // 81 - 0x51
	OP_NAME_FIRSTUPDATE = btcscript.OP_2 // 82 - 0x52
	OP_NAME_UPDATE      = btcscript.OP_3 // 83 - 0x53
)

// OpcodeSet 是一个可以按助记符查找操作码的集合。
type OpcodeSet interface {
	// Lookup 返回助记符对应的操作码，以及该助记符是否属于此集合。
	Lookup(name string) (byte, bool)
}

// baseOpcodes 是 btcd 提供的比特币操作码表。
type baseOpcodes struct{}

// Lookup 实现 OpcodeSet 接口。
func (baseOpcodes) Lookup(name string) (byte, bool) {
	op, ok := btcscript.OpcodeByName[name]
	return op, ok
}

// nameOpcodes 是名称操作码的封闭集合。
type nameOpcodes map[string]byte

// Lookup 实现 OpcodeSet 接口。
func (n nameOpcodes) Lookup(name string) (byte, bool) {
	op, ok := n[name]
	return op, ok
}

var (
	// BaseOpcodes 是比特币基础操作码集合。
	BaseOpcodes OpcodeSet = baseOpcodes{}

	// NameOpcodes 是名称操作码扩展集合。
	NameOpcodes OpcodeSet = nameOpcodes{
		"OP_NAME_NEW":         OP_NAME_NEW,
		"OP_NAME_FIRSTUPDATE": OP_NAME_FIRSTUPDATE,
		"OP_NAME_UPDATE":      OP_NAME_UPDATE,
	}

	// DefaultResolver 依次查询基础集合与名称扩展集合。
	DefaultResolver = NewOpcodeResolver(BaseOpcodes, NameOpcodes)
)

// OpcodeResolver 将文本助记符或数字字面量解析为操作码。
// 它按顺序查询多个 OpcodeSet，不修改任何共享的操作码表。
type OpcodeResolver struct {
	sets []OpcodeSet
}

// NewOpcodeResolver 返回按给定顺序查询集合的解析器。
func NewOpcodeResolver(sets ...OpcodeSet) *OpcodeResolver {
	return &OpcodeResolver{sets: sets}
}

// Resolve 返回 token 对应的操作码。
// 除助记符外还接受 -1 到 16 的十进制字面量，这与反汇编输出中小整数的写法一致。
func (r *OpcodeResolver) Resolve(token string) (byte, error) {
	for _, set := range r.sets {
		if op, ok := set.Lookup(token); ok {
			return op, nil
		}
	}

	if op, ok := smallIntOpcode(token); ok {
		return op, nil
	}

	return 0, scriptError(ErrUnknownOpcode, fmt.Sprintf("unknown opcode %q", token))
}

// IsOpcode 返回 token 是否可以解析为操作码。
func (r *OpcodeResolver) IsOpcode(token string) bool {
	_, err := r.Resolve(token)
	return err == nil
}

// smallIntOpcode 将 -1 到 16 的规范十进制字面量映射为 OP_1NEGATE、OP_0 与 OP_1 至 OP_16。
func smallIntOpcode(token string) (byte, bool) {
	n, err := strconv.Atoi(token)
	if err != nil || strconv.Itoa(n) != token {
		return 0, false
	}

	switch {
	case n == -1:
		return btcscript.OP_1NEGATE, true
	case n == 0:
		return btcscript.OP_0, true
	case n >= 1 && n <= 16:
		return byte(btcscript.OP_1 - 1 + n), true
	}

	return 0, false
}
