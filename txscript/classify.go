// 名称模板的文本与二进制分类。
package txscript

import (
	"fmt"
	"strings"
)

// checkTokens 检查文本 token 序列是否匹配给定语法。
// 块数或首个操作码不符时返回 ErrNotANameScript，其余位置不符时返回 ErrMalformedNameScript。
func checkTokens(tokens []string, slots []slot) error {
	if len(tokens) != len(slots) || len(slots) == 0 {
		return scriptError(ErrNotANameScript,
			fmt.Sprintf("script has %d tokens", len(tokens)))
	}

	for i, s := range slots {
		tok := tokens[i]
		switch s.kind {
		case opcodeSlot:
			op, err := DefaultResolver.Resolve(tok)
			if err == nil && op == s.opcode {
				continue
			}
			code := ErrMalformedNameScript
			if i == 0 {
				code = ErrNotANameScript
			}
			return scriptError(code,
				fmt.Sprintf("token %d (%q) is not opcode 0x%02x", i, tok, s.opcode))

		default:
			data, err := decodeHexToken(tok)
			if err != nil {
				return scriptError(ErrMalformedNameScript,
					fmt.Sprintf("token %d (%q) is not a hex push", i, tok))
			}
			if len(data) < s.min || len(data) > s.max {
				return scriptError(ErrMalformedNameScript,
					fmt.Sprintf("token %d is %d bytes, want %d-%d", i, len(data), s.min, s.max))
			}
		}
	}

	return nil
}

// checkChunks 是 checkTokens 在已解码块序列上的对应版本。
// 数据位置只接受真正的数据推送，小整数操作码不会被当作数据。
func checkChunks(chunks []Chunk, slots []slot) error {
	if len(chunks) != len(slots) || len(slots) == 0 {
		return scriptError(ErrNotANameScript,
			fmt.Sprintf("script has %d chunks", len(chunks)))
	}

	for i, s := range slots {
		c := chunks[i]
		switch s.kind {
		case opcodeSlot:
			if c.Opcode == s.opcode {
				continue
			}
			code := ErrMalformedNameScript
			if i == 0 {
				code = ErrNotANameScript
			}
			return scriptError(code,
				fmt.Sprintf("chunk %d is opcode 0x%02x, want 0x%02x", i, c.Opcode, s.opcode))

		default:
			if !c.IsPush() {
				return scriptError(ErrMalformedNameScript,
					fmt.Sprintf("chunk %d (opcode 0x%02x) is not a data push", i, c.Opcode))
			}
			if len(c.Data) < s.min || len(c.Data) > s.max {
				return scriptError(ErrMalformedNameScript,
					fmt.Sprintf("chunk %d is %d bytes, want %d-%d", i, len(c.Data), s.min, s.max))
			}
		}
	}

	return nil
}

// classifyWith 按优先级尝试每个模板，返回第一个完整匹配的模板。
// 没有匹配时，若存在结构接近的模板则返回其 ErrMalformedNameScript，否则返回 ErrNotANameScript。
func classifyWith(check func(slots []slot) error) (Template, error) {
	var malformed error
	for _, tmpl := range templatePrecedence {
		err := check(templateGrammars[tmpl])
		if err == nil {
			return tmpl, nil
		}
		if malformed == nil && IsErrorCode(err, ErrMalformedNameScript) {
			malformed = err
		}
	}

	if malformed != nil {
		return NonNameTy, malformed
	}
	return NonNameTy, scriptError(ErrNotANameScript, "script does not match any name template")
}

// Classify 返回文本 token 序列匹配的名称模板，不匹配时返回 NonNameTy。
func Classify(tokens []string) Template {
	tmpl, _ := classifyWith(func(slots []slot) error {
		return checkTokens(tokens, slots)
	})
	return tmpl
}

// ClassifyChunks 返回已解码块序列匹配的名称模板，不匹配时返回 NonNameTy。
func ClassifyChunks(chunks []Chunk) Template {
	tmpl, _ := classifyWith(func(slots []slot) error {
		return checkChunks(chunks, slots)
	})
	return tmpl
}

// IsNameScript 返回二进制脚本是否为名称脚本。
func IsNameScript(script []byte) bool {
	chunks, err := DecodeChunks(script)
	if err != nil {
		return false
	}
	return ClassifyChunks(chunks) != NonNameTy
}

// IsNameScriptString 返回文本脚本是否为名称脚本。
func IsNameScriptString(asm string) bool {
	return Classify(strings.Fields(asm)) != NonNameTy
}
