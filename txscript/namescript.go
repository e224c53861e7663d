// 已分类的名称脚本值及其字段访问。
package txscript

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	btcscript "github.com/btcsuite/btcd/txscript"
)

// Parse 按模板逐个位置编码 token：操作码位置用 EncodeOpcode，
// 名称、随机数与值用 EncodePush，两个哈希位置用 EncodeFixed。
func Parse(tokens []string, tmpl Template) ([]Chunk, error) {
	slots, ok := templateGrammars[tmpl]
	if !ok {
		return nil, scriptError(ErrInvalidTemplate,
			fmt.Sprintf("cannot parse tokens as %v", tmpl))
	}
	if err := checkTokens(tokens, slots); err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(slots))
	for i, s := range slots {
		var (
			chunk Chunk
			err   error
		)
		switch s.kind {
		case opcodeSlot:
			chunk, err = EncodeOpcode(tokens[i])
		case pushSlot:
			chunk, err = EncodePush(tokens[i])
		case hashSlot:
			chunk, err = EncodeFixed(tokens[i])
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// NameScript 是一个已分类的名称脚本。
type NameScript struct {
	tmpl   Template
	chunks []Chunk
}

// ParseNameScript 解析 ASM 文本形式的名称脚本。
// 不匹配任何模板时返回 ErrNotANameScript，结构接近但字段非法时返回 ErrMalformedNameScript。
func ParseNameScript(asm string) (*NameScript, error) {
	tokens := strings.Fields(asm)
	tmpl, err := classifyWith(func(slots []slot) error {
		return checkTokens(tokens, slots)
	})
	if err != nil {
		return nil, err
	}

	chunks, err := Parse(tokens, tmpl)
	if err != nil {
		return nil, err
	}
	return &NameScript{tmpl: tmpl, chunks: chunks}, nil
}

// DecodeNameScript 解码二进制名称脚本。
func DecodeNameScript(script []byte) (*NameScript, error) {
	chunks, err := DecodeChunks(script)
	if err != nil {
		return nil, err
	}

	tmpl, err := classifyWith(func(slots []slot) error {
		return checkChunks(chunks, slots)
	})
	if err != nil {
		return nil, err
	}
	return &NameScript{tmpl: tmpl, chunks: chunks}, nil
}

// Template 返回脚本的模板。
func (s *NameScript) Template() Template {
	return s.tmpl
}

// Chunks 返回脚本的块序列。
func (s *NameScript) Chunks() []Chunk {
	return s.chunks
}

// Bytes 返回脚本的二进制编码。
func (s *NameScript) Bytes() []byte {
	return Serialize(s.chunks)
}

// String 返回脚本的 ASM 文本形式，名称操作码按小整数写作 1、2、3。
func (s *NameScript) String() string {
	asm, _ := btcscript.DisasmString(s.Bytes())
	return asm
}

// data 返回第 i 个块的负载。
func (s *NameScript) data(i int) []byte {
	return s.chunks[i].Data
}

// Name 返回名称，name_new 没有名称字段，返回 nil。
func (s *NameScript) Name() []byte {
	switch s.tmpl {
	case NameFirstUpdateTy, NameUpdateTy:
		return s.data(1)
	}
	return nil
}

// Value 返回名称的值，name_new 返回 nil。
func (s *NameScript) Value() []byte {
	switch s.tmpl {
	case NameFirstUpdateTy:
		return s.data(3)
	case NameUpdateTy:
		return s.data(2)
	}
	return nil
}

// Nonce 返回 name_firstupdate 公开的随机数，其他模板返回 nil。
func (s *NameScript) Nonce() []byte {
	if s.tmpl == NameFirstUpdateTy {
		return s.data(2)
	}
	return nil
}

// Hash 返回 name_new 的承诺哈希，其他模板返回 nil。
func (s *NameScript) Hash() []byte {
	if s.tmpl == NameNewTy {
		return s.data(1)
	}
	return nil
}

// PubKeyHash 返回模板相关位置上的公钥哈希。
func (s *NameScript) PubKeyHash() []byte {
	return s.data(s.tmpl.PubKeyHashIndex())
}

// Address 返回脚本锁定到的 P2PKH 地址。
func (s *NameScript) Address(params *chaincfg.Params) (*btcutil.AddressPubKeyHash, error) {
	return btcutil.NewAddressPubKeyHash(s.PubKeyHash(), params)
}
