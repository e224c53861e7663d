package namechain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/namechain/txscript"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInsufficientFunds 表示输入金额不足以支付输出与手续费
	ErrInsufficientFunds = errors.New("输入金额不足")

	// ErrNoChange 表示交易没有找零输出
	ErrNoChange = errors.New("交易没有找零输出")

	// ErrNotPubKeyHash 表示名称输出的目标地址不是 P2PKH 地址
	ErrNotPubKeyHash = errors.New("名称输出只能锁定到公钥哈希地址")
)

// Transaction 是一个可链式调用的交易构建器
// 与 btcd 的 ScriptBuilder 一样，第一个错误会被保留，之后的调用不再修改交易
type Transaction struct {
	tx      *wire.MsgTx
	inputs  []txscript.Input
	params  *chaincfg.Params
	builder txscript.OutputBuilder

	fee         int64           // 交易手续费
	changeAddr  btcutil.Address // 找零地址
	changeIndex int             // 找零输出的索引，-1 表示没有找零
	err         error
}

// NewTransaction 返回一个空交易，名称输出使用 builder 构建
func NewTransaction(params *chaincfg.Params, builder txscript.OutputBuilder) *Transaction {
	return &Transaction{
		tx:          wire.NewMsgTx(wire.TxVersion),
		params:      params,
		builder:     builder,
		fee:         FeeSecurityMargin,
		changeIndex: -1,
	}
}

// Err 返回构建过程中的第一个错误，输入不足时返回 ErrInsufficientFunds
func (t *Transaction) Err() error {
	if t.err != nil {
		return t.err
	}
	if t.balance() < 0 {
		return fmt.Errorf("%w: 缺少 %v", ErrInsufficientFunds, btcutil.Amount(-t.balance()))
	}
	return nil
}

// From 添加要花费的输出，名称输出使用 NameInput
func (t *Transaction) From(utxos ...*UnspentOutput) *Transaction {
	if t.err != nil {
		return t
	}

	for _, utxo := range utxos {
		if utxo == nil {
			t.err = errors.New("输出为空")
			return t
		}
		prevOut := utxo.OutPoint()
		for _, in := range t.tx.TxIn {
			if in.PreviousOutPoint == prevOut {
				t.err = fmt.Errorf("重复花费输出 %v", prevOut)
				return t
			}
		}

		in, err := txscript.NewInput(prevOut, wire.NewTxOut(utxo.Amount, utxo.PkScript))
		if err != nil {
			t.err = fmt.Errorf("无法花费输出 %v: %w", prevOut, err)
			return t
		}

		t.inputs = append(t.inputs, in)
		t.tx.AddTxIn(wire.NewTxIn(&prevOut, nil, nil))
	}

	t.changed()
	return t
}

// To 添加一个支付到 addr 的输出
func (t *Transaction) To(addr btcutil.Address, amount int64) *Transaction {
	if t.err != nil {
		return t
	}

	if err := t.checkNet(addr); err != nil {
		t.err = err
		return t
	}
	pkScript, err := btcscript.PayToAddrScript(addr)
	if err != nil {
		t.err = err
		return t
	}
	return t.ToScript(pkScript, amount)
}

// ToScript 添加一个锁定到 pkScript 的输出，非标准脚本被拒绝
func (t *Transaction) ToScript(pkScript []byte, amount int64) *Transaction {
	if t.err != nil {
		return t
	}
	if amount <= 0 {
		t.err = fmt.Errorf("无效的输出金额 %d", amount)
		return t
	}
	if err := checkOutputStandard(pkScript); err != nil {
		t.err = err
		return t
	}

	t.addOutput(wire.NewTxOut(amount, pkScript))
	return t
}

// NameNew 添加 name_new 输出
func (t *Transaction) NameNew(name, rand string, addr btcutil.Address) *Transaction {
	return t.addNameOutput(addr, func(pkh []byte) (*wire.TxOut, error) {
		return t.builder.NameNew(name, rand, pkh)
	})
}

// NameFirstUpdate 添加 name_firstupdate 输出
func (t *Transaction) NameFirstUpdate(name, rand, value string, addr btcutil.Address) *Transaction {
	return t.addNameOutput(addr, func(pkh []byte) (*wire.TxOut, error) {
		return t.builder.NameFirstUpdate(name, rand, value, pkh)
	})
}

// NameUpdate 添加 name_update 输出
func (t *Transaction) NameUpdate(name, value string, addr btcutil.Address) *Transaction {
	return t.addNameOutput(addr, func(pkh []byte) (*wire.TxOut, error) {
		return t.builder.NameUpdate(name, value, pkh)
	})
}

// addNameOutput 构建并追加名称输出，一笔交易最多只能有一个名称输出
func (t *Transaction) addNameOutput(addr btcutil.Address, build func(pkh []byte) (*wire.TxOut, error)) *Transaction {
	if t.err != nil {
		return t
	}

	if err := t.checkNet(addr); err != nil {
		t.err = err
		return t
	}
	pkh, err := pubKeyHashFromAddress(addr)
	if err != nil {
		t.err = err
		return t
	}
	if idx := t.nameOutputIndex(); idx >= 0 {
		t.err = fmt.Errorf("交易已经包含名称输出 #%d", idx)
		return t
	}

	out, err := build(pkh)
	if err != nil {
		t.err = err
		return t
	}

	t.removeChange()
	txscript.AppendNameOutput(t.tx, out)
	t.changed()
	return t
}

// Change 设置找零地址
func (t *Transaction) Change(addr btcutil.Address) *Transaction {
	if t.err != nil {
		return t
	}

	if err := t.checkNet(addr); err != nil {
		t.err = err
		return t
	}
	pkScript, err := btcscript.PayToAddrScript(addr)
	if err != nil {
		t.err = err
		return t
	}
	if err := checkOutputStandard(pkScript); err != nil {
		t.err = err
		return t
	}

	t.changeAddr = addr
	t.changed()
	return t
}

// Fee 设置交易手续费
func (t *Transaction) Fee(amount int64) *Transaction {
	if t.err != nil {
		return t
	}
	if amount < 0 {
		t.err = fmt.Errorf("无效的手续费 %d", amount)
		return t
	}

	t.fee = amount
	t.changed()
	return t
}

// Sign 用每一把密钥尝试每一个未签名的输入
func (t *Transaction) Sign(keys ...*btcutil.WIF) *Transaction {
	if t.Err() != nil {
		return t
	}

	for idx, in := range t.inputs {
		if in.IsFullySigned() {
			continue
		}
		for _, key := range keys {
			sigs, err := in.Sign(t.tx, idx, key, btcscript.SigHashAll)
			if err != nil {
				t.err = fmt.Errorf("签名输入 #%d 失败: %w", idx, err)
				return t
			}
			for _, sig := range sigs {
				if err := in.AddSignature(t.tx, sig); err != nil {
					t.err = fmt.Errorf("添加输入 #%d 的签名失败: %w", idx, err)
					return t
				}
			}
			if in.IsFullySigned() {
				break
			}
		}
		t.tx.TxIn[idx].SignatureScript = in.SignatureScript()
	}

	logrus.Debugf("交易 %v 已签名 %v", t.tx.TxHash(), t.IsFullySigned())
	return t
}

// IsFullySigned 返回是否所有输入都已签名
func (t *Transaction) IsFullySigned() bool {
	if len(t.inputs) == 0 {
		return false
	}
	for _, in := range t.inputs {
		if !in.IsFullySigned() {
			return false
		}
	}
	return true
}

// Inputs 返回交易的输入
func (t *Transaction) Inputs() []txscript.Input {
	return t.inputs
}

// ChangeOutput 返回找零输出
func (t *Transaction) ChangeOutput() (*wire.TxOut, error) {
	if t.changeIndex < 0 {
		return nil, ErrNoChange
	}
	return t.tx.TxOut[t.changeIndex], nil
}

// EstimateSize 返回签名后交易的估计字节数
func (t *Transaction) EstimateSize() int {
	noInputs := t.tx.Copy()
	noInputs.TxIn = nil

	size := noInputs.SerializeSize() - wire.VarIntSerializeSize(0) +
		wire.VarIntSerializeSize(uint64(len(t.inputs)))
	for _, in := range t.inputs {
		size += in.EstimateSize()
	}
	return size
}

// TxHash 返回交易 ID
func (t *Transaction) TxHash() chainhash.Hash {
	return t.tx.TxHash()
}

// MsgTx 返回底层的 wire 交易
func (t *Transaction) MsgTx() *wire.MsgTx {
	return t.tx
}

// Serialize 返回交易的字节序列
func (t *Transaction) Serialize() ([]byte, error) {
	if err := t.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(t.tx.SerializeSize())
	if err := t.tx.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hex 返回交易的十六进制编码
func (t *Transaction) Hex() (string, error) {
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// String 实现 Stringer 接口
func (t *Transaction) String() string {
	return DescribeTransaction(t.tx)
}

// changed 在每次修改后清除签名并重新计算找零
func (t *Transaction) changed() {
	for idx, in := range t.inputs {
		in.ClearSignatures()
		t.tx.TxIn[idx].SignatureScript = nil
	}
	t.updateChange()
}

// inputAmount 返回所有输入的金额之和
func (t *Transaction) inputAmount() int64 {
	var total int64
	for _, in := range t.inputs {
		total += in.PrevOutput().Value
	}
	return total
}

// balance 返回输入减去非找零输出与手续费后的余额
func (t *Transaction) balance() int64 {
	total := t.inputAmount() - t.fee
	for idx, out := range t.tx.TxOut {
		if idx != t.changeIndex {
			total -= out.Value
		}
	}
	return total
}

// removeChange 删除找零输出
func (t *Transaction) removeChange() {
	if t.changeIndex < 0 {
		return
	}
	t.tx.TxOut = append(t.tx.TxOut[:t.changeIndex], t.tx.TxOut[t.changeIndex+1:]...)
	t.changeIndex = -1
}

// updateChange 把余额作为最后一个输出支付到找零地址
func (t *Transaction) updateChange() {
	t.removeChange()
	if t.changeAddr == nil {
		return
	}

	change := t.balance()
	if change <= 0 {
		return
	}

	// Change 已经检查过地址
	pkScript, _ := btcscript.PayToAddrScript(t.changeAddr)
	t.tx.AddTxOut(wire.NewTxOut(change, pkScript))
	t.changeIndex = len(t.tx.TxOut) - 1
}

// addOutput 在找零之前插入输出
func (t *Transaction) addOutput(out *wire.TxOut) {
	t.removeChange()
	t.tx.AddTxOut(out)
	t.changed()
}

// nameOutputIndex 返回名称输出的索引，没有时返回 -1
func (t *Transaction) nameOutputIndex() int {
	for idx, out := range t.tx.TxOut {
		if txscript.IsNameScript(out.PkScript) {
			return idx
		}
	}
	return -1
}

// checkNet 检查地址属于交易的网络
func (t *Transaction) checkNet(addr btcutil.Address) error {
	if addr == nil {
		return errors.New("地址为空")
	}
	if !addr.IsForNet(t.params) {
		return fmt.Errorf("地址 %v 不属于网络 %s", addr, t.params.Name)
	}
	return nil
}

// pubKeyHashFromAddress 返回 P2PKH 地址的公钥哈希
func pubKeyHashFromAddress(addr btcutil.Address) ([]byte, error) {
	pkhAddr, ok := addr.(*btcutil.AddressPubKeyHash)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotPubKeyHash, addr)
	}
	return pkhAddr.Hash160()[:], nil
}
