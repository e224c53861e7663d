// 定义了名称脚本处理过程中可能遇到的错误类型。
package txscript

import (
	"errors"
	"fmt"
)

// ErrorCode 标识一种脚本错误。
type ErrorCode int

// 这些常量用于标识特定的错误。
const (
	// ErrNotANameScript 表示文本或二进制脚本不匹配任何名称模板。
	ErrNotANameScript ErrorCode = iota

	// ErrMalformedNameScript 表示脚本结构接近某个名称模板，但字段内容不合法，例如哈希长度错误。
	ErrMalformedNameScript

	// ErrTruncatedScript 表示缓冲区剩余字节少于推送声明的长度。
	ErrTruncatedScript

	// ErrMissingNonce 表示构建名称输出时未提供随机数。
	ErrMissingNonce

	// ErrInvalidSignature 表示签名与输入不匹配或验证失败。
	ErrInvalidSignature

	// ErrInvalidTemplate 表示构建的脚本没有被分类回预期的模板。
	ErrInvalidTemplate

	// ErrInvalidEncoding 表示数据不是合法的偶数位十六进制字符串。
	ErrInvalidEncoding

	// ErrUnknownOpcode 表示操作码助记符无法解析。
	ErrUnknownOpcode

	// ErrUnsupportedScript 表示输入引用的输出脚本既不是名称脚本也不是 P2PKH。
	ErrUnsupportedScript

	// numErrorCodes 是错误代码的最大值，仅用于测试中的边界检查。
	numErrorCodes
)

// errorCodeStrings 将错误代码映射为可读字符串。
var errorCodeStrings = map[ErrorCode]string{
	ErrNotANameScript:      "ErrNotANameScript",
	ErrMalformedNameScript: "ErrMalformedNameScript",
	ErrTruncatedScript:     "ErrTruncatedScript",
	ErrMissingNonce:        "ErrMissingNonce",
	ErrInvalidSignature:    "ErrInvalidSignature",
	ErrInvalidTemplate:     "ErrInvalidTemplate",
	ErrInvalidEncoding:     "ErrInvalidEncoding",
	ErrUnknownOpcode:       "ErrUnknownOpcode",
	ErrUnsupportedScript:   "ErrUnsupportedScript",
}

// String 将 ErrorCode 作为人类可读的名称返回。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error 实现 error 接口，使 ErrorCode 可以直接与 errors.Is 比较。
func (e ErrorCode) Error() string {
	return e.String()
}

// Error 标识脚本相关的错误。
// 调用者可以通过 Err 字段以编程方式区分错误，Description 提供上下文信息。
type Error struct {
	Err         ErrorCode
	Description string
}

// Error 满足 error 接口并打印人类可读的错误。
func (e Error) Error() string {
	return e.Description
}

// Unwrap 返回底层的错误代码，以便 errors.Is(err, ErrTruncatedScript) 成立。
func (e Error) Unwrap() error {
	return e.Err
}

// scriptError 使用给定的错误代码和描述创建 Error。
func scriptError(c ErrorCode, desc string) Error {
	return Error{Err: c, Description: desc}
}

// IsErrorCode 返回错误是否为带有给定错误代码的脚本错误。
func IsErrorCode(err error, c ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.Err == c
}
