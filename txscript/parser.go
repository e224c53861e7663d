// 文本脚本解析器链。
package txscript

import (
	"encoding/hex"
	"fmt"
	"strings"

	btcscript "github.com/btcsuite/btcd/txscript"
)

// TemplateMatcher 识别并解析一类文本脚本。
type TemplateMatcher interface {
	// Match 返回 token 序列是否属于此匹配器。
	Match(tokens []string) bool

	// Parse 将已匹配的 token 序列编码为二进制脚本。
	Parse(tokens []string) ([]byte, error)
}

// nameScriptMatcher 匹配三种名称模板。
type nameScriptMatcher struct{}

// Match 实现 TemplateMatcher 接口。
func (nameScriptMatcher) Match(tokens []string) bool {
	return Classify(tokens) != NonNameTy
}

// Parse 实现 TemplateMatcher 接口。
func (nameScriptMatcher) Parse(tokens []string) ([]byte, error) {
	chunks, err := Parse(tokens, Classify(tokens))
	if err != nil {
		return nil, err
	}
	return Serialize(chunks), nil
}

// NameScriptMatcher 是名称模板的匹配器。
var NameScriptMatcher TemplateMatcher = nameScriptMatcher{}

// GenericParser 使用 btcd 的 ScriptBuilder 解析任意文本脚本。
// 可解析为操作码的 token 作为操作码，其余按十六进制数据规范推送。
type GenericParser struct {
	Resolver *OpcodeResolver
}

// Parse 将 token 序列编码为二进制脚本。
func (p GenericParser) Parse(tokens []string) ([]byte, error) {
	resolver := p.Resolver
	if resolver == nil {
		resolver = DefaultResolver
	}

	builder := btcscript.NewScriptBuilder()
	for _, tok := range tokens {
		if op, err := resolver.Resolve(tok); err == nil {
			builder.AddOp(op)
			continue
		}

		data, err := hex.DecodeString(tok)
		if err != nil {
			return nil, scriptError(ErrUnknownOpcode,
				fmt.Sprintf("token %q is neither an opcode nor hex data", tok))
		}
		builder.AddData(data)
	}

	return builder.Script()
}

// ParserChain 按注册顺序尝试模板匹配器，全部不匹配时交给通用解析器。
type ParserChain struct {
	matchers []TemplateMatcher
	fallback GenericParser
}

// NewParserChain 返回一个解析器链，matchers 按给定顺序优先于 fallback。
func NewParserChain(fallback GenericParser, matchers ...TemplateMatcher) *ParserChain {
	return &ParserChain{matchers: matchers, fallback: fallback}
}

// Register 在链的末尾（通用解析器之前）追加一个匹配器。
func (c *ParserChain) Register(m TemplateMatcher) {
	c.matchers = append(c.matchers, m)
}

// ParseTokens 解析 token 序列。
func (c *ParserChain) ParseTokens(tokens []string) ([]byte, error) {
	for _, m := range c.matchers {
		if m.Match(tokens) {
			return m.Parse(tokens)
		}
	}

	log.Tracef("No template matched %d tokens, using generic parser", len(tokens))
	return c.fallback.Parse(tokens)
}

// ParseString 解析 ASM 文本脚本。
func (c *ParserChain) ParseString(asm string) ([]byte, error) {
	return c.ParseTokens(strings.Fields(asm))
}

// DefaultParser 先尝试名称模板，再回退到通用解析器。
var DefaultParser = NewParserChain(GenericParser{Resolver: DefaultResolver}, NameScriptMatcher)

// ParseScript 使用 DefaultParser 将 ASM 文本脚本编码为二进制脚本。
func ParseScript(asm string) ([]byte, error) {
	return DefaultParser.ParseString(asm)
}
