// 交易签名对象及解锁脚本模式判断。
package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// TransactionSignature 是某个输入的一份签名。
type TransactionSignature struct {
	PrevOut    wire.OutPoint          // 被花费的输出
	InputIndex int                    // 输入在交易中的索引
	PubKey     []byte                 // 序列化的公钥（压缩或非压缩）
	Signature  []byte                 // DER 编码的签名，不含签名哈希类型
	HashType   btcscript.SigHashType // 签名哈希类型
}

// ScriptSig 返回 <signature||hashtype> <pubkey> 形式的解锁脚本。
func (s *TransactionSignature) ScriptSig() ([]byte, error) {
	sig := make([]byte, 0, len(s.Signature)+1)
	sig = append(sig, s.Signature...)
	sig = append(sig, byte(s.HashType))

	return btcscript.NewScriptBuilder().AddData(sig).AddData(s.PubKey).Script()
}

// verify 检查签名在 tx 的输入上对 pkScript 的签名哈希是否有效。
func (s *TransactionSignature) verify(tx *wire.MsgTx, pkScript []byte) bool {
	pubKey, err := btcec.ParsePubKey(s.PubKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(s.Signature)
	if err != nil {
		return false
	}
	sigHash, err := btcscript.CalcSignatureHash(pkScript, s.HashType, tx, s.InputIndex)
	if err != nil {
		return false
	}
	return sig.Verify(sigHash, pubKey)
}

// IsPubKeyHashSigScript 返回解锁脚本是否为标准的签名加公钥模式。
func IsPubKeyHashSigScript(script []byte) bool {
	chunks, err := DecodeChunks(script)
	if err != nil || len(chunks) != 2 {
		return false
	}

	sig, pubKey := chunks[0], chunks[1]
	if !sig.IsPush() || !pubKey.IsPush() {
		return false
	}

	// DER 签名 8-72 字节，加 1 字节签名哈希类型
	if len(sig.Data) < 9 || len(sig.Data) > 73 {
		return false
	}
	switch len(pubKey.Data) {
	case 33, 65:
		return true
	}
	return false
}
