// 名称输出构建器，生成 name_new / name_firstupdate / name_update 输出。
package txscript

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

const (
	// NameOperationFee 是名称输出必须锁定的网络费用，0.01 NMC。
	NameOperationFee int64 = 1000000

	// NameTxVersion 是包含名称输出的交易使用的版本号。
	NameTxVersion int32 = 0x7100
)

// NonceMode 决定 name_new 的哈希槽位如何由随机数得到。
type NonceMode uint8

const (
	// NoncePassthrough 直接把规范化后的随机数放入哈希槽位。
	NoncePassthrough NonceMode = iota

	// NonceCommitment 放入 Hash160(rand || name)，与 Namecoin Core 的 name_new 一致。
	NonceCommitment
)

// String 实现 Stringer 接口。
func (m NonceMode) String() string {
	switch m {
	case NoncePassthrough:
		return "passthrough"
	case NonceCommitment:
		return "commitment"
	}
	return fmt.Sprintf("NonceMode(%d)", uint8(m))
}

// ParseNonceMode 将字符串解析为 NonceMode，空字符串视为 passthrough。
func ParseNonceMode(s string) (NonceMode, error) {
	switch s {
	case "", "passthrough":
		return NoncePassthrough, nil
	case "commitment":
		return NonceCommitment, nil
	}
	return 0, fmt.Errorf("unknown nonce mode %q", s)
}

// OutputBuilder 构建名称输出。
type OutputBuilder struct {
	Fee       int64     // 输出锁定的金额
	NonceMode NonceMode // name_new 哈希槽位的生成方式
}

// DefaultOutputBuilder 使用网络要求的名称费用与 passthrough 随机数模式。
var DefaultOutputBuilder = OutputBuilder{Fee: NameOperationFee, NonceMode: NoncePassthrough}

// NormalizeNonce 规范化随机数：偶数长度的十六进制字符串原样使用，否则对其原始字节做十六进制编码。
func NormalizeNonce(nonce string) (string, error) {
	if nonce == "" {
		return "", scriptError(ErrMissingNonce, "no random value supplied")
	}
	if len(nonce)%2 == 0 {
		if _, err := hex.DecodeString(nonce); err == nil {
			return nonce, nil
		}
	}
	return hex.EncodeToString([]byte(nonce)), nil
}

// dataToken 返回数据的 ASM token，空数据写作 "0"。
func dataToken(data []byte) string {
	if len(data) == 0 {
		return "0"
	}
	return hex.EncodeToString(data)
}

// checkFields 检查名称、值与公钥哈希的长度。
func checkFields(name, value string, pkh []byte) error {
	if len(name) > MaxNameLength {
		return scriptError(ErrMalformedNameScript,
			fmt.Sprintf("name is %d bytes, max %d", len(name), MaxNameLength))
	}
	if len(value) > MaxValueLength {
		return scriptError(ErrMalformedNameScript,
			fmt.Sprintf("value is %d bytes, max %d", len(value), MaxValueLength))
	}
	if len(pkh) != HashLength {
		return scriptError(ErrMalformedNameScript,
			fmt.Sprintf("pubkey hash is %d bytes, want %d", len(pkh), HashLength))
	}
	return nil
}

// build 将 token 与编码后的块都分类回预期模板后编码为输出。
func (b OutputBuilder) build(tokens []string, want Template) (*wire.TxOut, error) {
	if got := Classify(tokens); got != want {
		return nil, scriptError(ErrInvalidTemplate,
			fmt.Sprintf("built script classifies as %v, want %v", got, want))
	}

	chunks, err := Parse(tokens, want)
	if err != nil {
		return nil, err
	}
	if err := checkBuilt(chunks, want); err != nil {
		return nil, err
	}
	return wire.NewTxOut(b.Fee, Serialize(chunks)), nil
}

// checkBuilt 检查编码后的块序列分类为 want。
func checkBuilt(chunks []Chunk, want Template) error {
	if got := ClassifyChunks(chunks); got != want {
		return scriptError(ErrInvalidTemplate,
			fmt.Sprintf("built chunks classify as %v, want %v", got, want))
	}
	return nil
}

// NameNew 构建 name_new 输出。
func (b OutputBuilder) NameNew(name, nonce string, pkh []byte) (*wire.TxOut, error) {
	rand, err := NormalizeNonce(nonce)
	if err != nil {
		return nil, err
	}
	if err := checkFields(name, "", pkh); err != nil {
		return nil, err
	}

	hash, err := hex.DecodeString(rand)
	if err != nil {
		return nil, scriptError(ErrInvalidEncoding, err.Error())
	}
	if b.NonceMode == NonceCommitment {
		hash = NameCommitment(hash, []byte(name))
	}
	if len(hash) != HashLength {
		return nil, scriptError(ErrMalformedNameScript,
			fmt.Sprintf("name_new hash is %d bytes, want %d", len(hash), HashLength))
	}

	return b.build([]string{
		"OP_NAME_NEW", hex.EncodeToString(hash), "OP_2DROP",
		"OP_DUP", "OP_HASH160", hex.EncodeToString(pkh), "OP_EQUALVERIFY", "OP_CHECKSIG",
	}, NameNewTy)
}

// NameFirstUpdate 构建 name_firstupdate 输出。
func (b OutputBuilder) NameFirstUpdate(name, nonce, value string, pkh []byte) (*wire.TxOut, error) {
	rand, err := NormalizeNonce(nonce)
	if err != nil {
		return nil, err
	}
	if err := checkFields(name, value, pkh); err != nil {
		return nil, err
	}
	if n := len(rand) / 2; n < MinNonceLength || n > MaxNonceLength {
		return nil, scriptError(ErrMalformedNameScript,
			fmt.Sprintf("rand is %d bytes, want %d-%d", n, MinNonceLength, MaxNonceLength))
	}

	return b.build([]string{
		"OP_NAME_FIRSTUPDATE", dataToken([]byte(name)), rand, dataToken([]byte(value)),
		"OP_2DROP", "OP_2DROP",
		"OP_DUP", "OP_HASH160", hex.EncodeToString(pkh), "OP_EQUALVERIFY", "OP_CHECKSIG",
	}, NameFirstUpdateTy)
}

// NameUpdate 构建 name_update 输出。
func (b OutputBuilder) NameUpdate(name, value string, pkh []byte) (*wire.TxOut, error) {
	if err := checkFields(name, value, pkh); err != nil {
		return nil, err
	}

	return b.build([]string{
		"OP_NAME_UPDATE", dataToken([]byte(name)), dataToken([]byte(value)),
		"OP_2DROP", "OP_DROP",
		"OP_DUP", "OP_HASH160", hex.EncodeToString(pkh), "OP_EQUALVERIFY", "OP_CHECKSIG",
	}, NameUpdateTy)
}

// AppendNameOutput 将名称输出追加到交易，随后把交易版本设置为 NameTxVersion。
func AppendNameOutput(tx *wire.MsgTx, out *wire.TxOut) {
	tx.AddTxOut(out)
	tx.Version = NameTxVersion
}
