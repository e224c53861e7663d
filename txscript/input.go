// 交易输入的能力接口以及 P2PKH 与名称输入两种实现。
package txscript

import (
	"crypto/subtle"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// ScriptMaxSize 是签名加公钥解锁脚本的最大估计长度：签名 73 字节，公钥推送 34 字节。
	ScriptMaxSize = 73 + 34

	// baseInputSize 是不含解锁脚本的输入大小：前序输出 36 字节、序列号 4 字节、脚本长度 1 字节。
	baseInputSize = 36 + 4 + 1
)

// Input 是交易输入的能力接口。
type Input interface {
	// PreviousOutPoint 返回被花费的输出。
	PreviousOutPoint() wire.OutPoint

	// PrevOutput 返回被花费输出的金额与锁定脚本。
	PrevOutput() *wire.TxOut

	// Sign 在 key 可以花费该输入时返回一份签名，否则返回空集合。
	Sign(tx *wire.MsgTx, idx int, key *btcutil.WIF, hashType btcscript.SigHashType) ([]*TransactionSignature, error)

	// AddSignature 验证签名后把它安装为解锁脚本。
	AddSignature(tx *wire.MsgTx, sig *TransactionSignature) error

	// ClearSignatures 清空解锁脚本。
	ClearSignatures()

	// IsFullySigned 返回解锁脚本是否为签名加公钥模式。
	IsFullySigned() bool

	// SignatureScript 返回当前的解锁脚本。
	SignatureScript() []byte

	// EstimateSize 返回签名后输入的估计字节数。
	EstimateSize() int
}

// baseInput 保存两种输入共享的状态。
type baseInput struct {
	prevOut   wire.OutPoint
	output    *wire.TxOut
	sigScript []byte
}

// PreviousOutPoint 实现 Input 接口。
func (in *baseInput) PreviousOutPoint() wire.OutPoint {
	return in.prevOut
}

// PrevOutput 实现 Input 接口。
func (in *baseInput) PrevOutput() *wire.TxOut {
	return in.output
}

// ClearSignatures 实现 Input 接口。
func (in *baseInput) ClearSignatures() {
	in.sigScript = nil
}

// IsFullySigned 实现 Input 接口。
func (in *baseInput) IsFullySigned() bool {
	return IsPubKeyHashSigScript(in.sigScript)
}

// SignatureScript 实现 Input 接口。
func (in *baseInput) SignatureScript() []byte {
	return in.sigScript
}

// EstimateSize 实现 Input 接口。
func (in *baseInput) EstimateSize() int {
	return baseInputSize + ScriptMaxSize
}

// signFor 在 key 的公钥哈希等于 pkh 时签名，比较使用常量时间。
func (in *baseInput) signFor(pkh []byte, tx *wire.MsgTx, idx int, key *btcutil.WIF,
	hashType btcscript.SigHashType) ([]*TransactionSignature, error) {

	pubKey := key.SerializePubKey()
	if subtle.ConstantTimeCompare(Hash160(pubKey), pkh) != 1 {
		return nil, nil
	}

	sig, err := btcscript.RawTxInSignature(tx, idx, in.output.PkScript, hashType, key.PrivKey)
	if err != nil {
		return nil, err
	}

	return []*TransactionSignature{{
		PrevOut:    in.prevOut,
		InputIndex: idx,
		PubKey:     pubKey,
		Signature:  sig[:len(sig)-1],
		HashType:   hashType,
	}}, nil
}

// addSignatureFor 验证签名属于 pkh 且对该输入有效，然后安装解锁脚本。
func (in *baseInput) addSignatureFor(pkh []byte, tx *wire.MsgTx, sig *TransactionSignature) error {
	if sig == nil {
		return scriptError(ErrInvalidSignature, "nil signature")
	}
	if sig.InputIndex < 0 || sig.InputIndex >= len(tx.TxIn) {
		return scriptError(ErrInvalidSignature,
			fmt.Sprintf("input index %d out of range", sig.InputIndex))
	}
	if tx.TxIn[sig.InputIndex].PreviousOutPoint != in.prevOut || sig.PrevOut != in.prevOut {
		return scriptError(ErrInvalidSignature,
			fmt.Sprintf("signature is not for outpoint %v", in.prevOut))
	}
	if subtle.ConstantTimeCompare(Hash160(sig.PubKey), pkh) != 1 {
		return scriptError(ErrInvalidSignature, "public key does not match pubkey hash")
	}
	if !sig.verify(tx, in.output.PkScript) {
		return scriptError(ErrInvalidSignature, "signature verification failed")
	}

	script, err := sig.ScriptSig()
	if err != nil {
		return err
	}
	in.sigScript = script
	return nil
}

// PubKeyHashInput 花费普通 P2PKH 输出。
type PubKeyHashInput struct {
	baseInput
	pubKeyHash []byte
}

// NewPubKeyHashInput 为 P2PKH 输出创建输入。
func NewPubKeyHashInput(prevOut wire.OutPoint, output *wire.TxOut) (*PubKeyHashInput, error) {
	if btcscript.GetScriptClass(output.PkScript) != btcscript.PubKeyHashTy {
		return nil, scriptError(ErrUnsupportedScript, "output is not pay-to-pubkey-hash")
	}

	// OP_DUP OP_HASH160 <20 字节> OP_EQUALVERIFY OP_CHECKSIG
	return &PubKeyHashInput{
		baseInput:  baseInput{prevOut: prevOut, output: output},
		pubKeyHash: output.PkScript[3:23],
	}, nil
}

// Sign 实现 Input 接口。
func (in *PubKeyHashInput) Sign(tx *wire.MsgTx, idx int, key *btcutil.WIF,
	hashType btcscript.SigHashType) ([]*TransactionSignature, error) {
	return in.signFor(in.pubKeyHash, tx, idx, key, hashType)
}

// AddSignature 实现 Input 接口。
func (in *PubKeyHashInput) AddSignature(tx *wire.MsgTx, sig *TransactionSignature) error {
	return in.addSignatureFor(in.pubKeyHash, tx, sig)
}

// NameInput 花费名称输出。公钥哈希从已分类块序列中按模板位置读取。
type NameInput struct {
	baseInput
	script *NameScript
}

// NewNameInput 为名称输出创建输入。
func NewNameInput(prevOut wire.OutPoint, output *wire.TxOut) (*NameInput, error) {
	script, err := DecodeNameScript(output.PkScript)
	if err != nil {
		return nil, err
	}
	return &NameInput{
		baseInput: baseInput{prevOut: prevOut, output: output},
		script:    script,
	}, nil
}

// NameScript 返回被花费输出的名称脚本。
func (in *NameInput) NameScript() *NameScript {
	return in.script
}

// Template 返回被花费输出的模板。
func (in *NameInput) Template() Template {
	return in.script.Template()
}

// pubKeyHash 返回模板位置（5、8 或 7）上的公钥哈希。
func (in *NameInput) pubKeyHash() []byte {
	return in.script.Chunks()[in.script.Template().PubKeyHashIndex()].Data
}

// Sign 实现 Input 接口。
func (in *NameInput) Sign(tx *wire.MsgTx, idx int, key *btcutil.WIF,
	hashType btcscript.SigHashType) ([]*TransactionSignature, error) {
	return in.signFor(in.pubKeyHash(), tx, idx, key, hashType)
}

// AddSignature 实现 Input 接口。
func (in *NameInput) AddSignature(tx *wire.MsgTx, sig *TransactionSignature) error {
	return in.addSignatureFor(in.pubKeyHash(), tx, sig)
}

// NewInput 为输出选择输入实现：名称脚本优先使用 NameInput，否则使用 PubKeyHashInput。
func NewInput(prevOut wire.OutPoint, output *wire.TxOut) (Input, error) {
	if IsNameScript(output.PkScript) {
		in, err := NewNameInput(prevOut, output)
		if err != nil {
			return nil, err
		}
		log.Debugf("Spending %v output %v", in.Template(), prevOut)
		return in, nil
	}

	return NewPubKeyHashInput(prevOut, output)
}
