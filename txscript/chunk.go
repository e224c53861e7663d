// 脚本块的编码与解码，包括推送数据操作码的选择。
package txscript

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	btcscript "github.com/btcsuite/btcd/txscript"
)

// Chunk 是脚本中的一个元素：纯操作码，或带有负载的数据推送。
type Chunk struct {
	Opcode byte   // 操作码；数据推送时为选定的推送操作码
	Data   []byte // 推送的负载，纯操作码时为 nil
	Len    int    // 声明的长度
}

// IsPush 返回该块是否为数据推送（包括空推送 OP_0）。
func (c Chunk) IsPush() bool {
	return c.Opcode <= btcscript.OP_PUSHDATA4
}

// decodeHexToken 解码数据 token。单独的 "0" 表示空推送。
func decodeHexToken(payloadHex string) ([]byte, error) {
	if payloadHex == "0" {
		return nil, nil
	}
	if len(payloadHex)%2 != 0 {
		return nil, scriptError(ErrInvalidEncoding,
			fmt.Sprintf("hex payload %q has an odd number of digits", payloadHex))
	}
	data, err := hex.DecodeString(payloadHex)
	if err != nil {
		return nil, scriptError(ErrInvalidEncoding,
			fmt.Sprintf("invalid hex payload %q: %v", payloadHex, err))
	}
	return data, nil
}

// NewPushChunk 按负载长度选择最小的推送操作码。
//
//	0          OP_0
//	1-75       直接长度字节
//	76-255     OP_PUSHDATA1
//	256-65535  OP_PUSHDATA2
//	其他        OP_PUSHDATA4
func NewPushChunk(data []byte) Chunk {
	n := len(data)
	switch {
	case n == 0:
		return Chunk{Opcode: btcscript.OP_0}
	case n <= btcscript.OP_DATA_75:
		return Chunk{Opcode: byte(n), Data: data, Len: n}
	case n <= 0xff:
		return Chunk{Opcode: btcscript.OP_PUSHDATA1, Data: data, Len: n}
	case n <= 0xffff:
		return Chunk{Opcode: btcscript.OP_PUSHDATA2, Data: data, Len: n}
	default:
		return Chunk{Opcode: btcscript.OP_PUSHDATA4, Data: data, Len: n}
	}
}

// EncodePush 将十六进制负载编码为最小推送块。
func EncodePush(payloadHex string) (Chunk, error) {
	data, err := decodeHexToken(payloadHex)
	if err != nil {
		return Chunk{}, err
	}
	return NewPushChunk(data), nil
}

// EncodeFixed 编码 20 字节的哈希槽位，使用直接长度推送（操作码 20）。
// 注意 Len 记录的是十六进制字符数（40），而不是负载字节数。
func EncodeFixed(payloadHex string) (Chunk, error) {
	data, err := decodeHexToken(payloadHex)
	if err != nil {
		return Chunk{}, err
	}
	if len(data) != HashLength {
		return Chunk{}, scriptError(ErrMalformedNameScript,
			fmt.Sprintf("fixed hash field must be %d bytes, got %d", HashLength, len(data)))
	}
	return Chunk{Opcode: btcscript.OP_DATA_20, Data: data, Len: len(payloadHex)}, nil
}

// EncodeOpcode 通过 DefaultResolver 将助记符或数字字面量编码为纯操作码块。
func EncodeOpcode(name string) (Chunk, error) {
	op, err := DefaultResolver.Resolve(name)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Opcode: op}, nil
}

// DecodeChunk 从 script 的 offset 处读取一个元素，返回该块和下一个元素的偏移量。
func DecodeChunk(script []byte, offset int) (Chunk, int, error) {
	if offset < 0 || offset >= len(script) {
		return Chunk{}, offset, scriptError(ErrTruncatedScript,
			fmt.Sprintf("offset %d is outside of script of length %d", offset, len(script)))
	}

	tokenizer := btcscript.MakeScriptTokenizer(0, script[offset:])
	if !tokenizer.Next() {
		return Chunk{}, offset, scriptError(ErrTruncatedScript,
			fmt.Sprintf("malformed push at offset %d: %v", offset, tokenizer.Err()))
	}

	data := tokenizer.Data()
	chunk := Chunk{Opcode: tokenizer.Opcode(), Data: data, Len: len(data)}
	return chunk, offset + int(tokenizer.ByteIndex()), nil
}

// DecodeChunks 将整个脚本解码为块序列。
func DecodeChunks(script []byte) ([]Chunk, error) {
	var chunks []Chunk
	for offset := 0; offset < len(script); {
		chunk, next, err := DecodeChunk(script, offset)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		offset = next
	}
	return chunks, nil
}

// appendChunk 将块的操作码、长度前缀与负载追加到 buf。
func appendChunk(buf []byte, c Chunk) []byte {
	buf = append(buf, c.Opcode)
	switch {
	case c.Opcode >= btcscript.OP_DATA_1 && c.Opcode <= btcscript.OP_DATA_75:
		buf = append(buf, c.Data...)
	case c.Opcode == btcscript.OP_PUSHDATA1:
		buf = append(buf, byte(len(c.Data)))
		buf = append(buf, c.Data...)
	case c.Opcode == btcscript.OP_PUSHDATA2:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(c.Data)))
		buf = append(buf, c.Data...)
	case c.Opcode == btcscript.OP_PUSHDATA4:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Data)))
		buf = append(buf, c.Data...)
	}
	return buf
}

// Serialize 按顺序拼接所有块的二进制编码。
func Serialize(chunks []Chunk) []byte {
	size := 0
	for _, c := range chunks {
		size += 5 + len(c.Data)
	}
	buf := make([]byte, 0, size)
	for _, c := range chunks {
		buf = appendChunk(buf, c)
	}
	return buf
}
