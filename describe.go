// 打印

package namechain

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/namechain/txscript"
)

// DescribeTransaction 返回交易的可读描述：每个输入与输出的反汇编脚本，以及名称输出的字段
func DescribeTransaction(tx *wire.MsgTx) string {
	var b strings.Builder

	fmt.Fprintf(&b, "交易:\t\t%v\n", tx.TxHash())
	fmt.Fprintf(&b, "版本:\t\t%#x\n", tx.Version)
	fmt.Fprintf(&b, "锁定时间:\t%d\n", tx.LockTime)

	for i, in := range tx.TxIn {
		fmt.Fprintf(&b, "输入 #%d:\t%v\n", i, in.PreviousOutPoint)
		if len(in.SignatureScript) > 0 {
			fmt.Fprintf(&b, "  解锁脚本:\t%s\n", disasm(in.SignatureScript))
		}
	}

	for i, out := range tx.TxOut {
		fmt.Fprintf(&b, "输出 #%d:\t%v\n", i, btcutil.Amount(out.Value))
		fmt.Fprintf(&b, "  脚本反汇编:\t%s\n", disasm(out.PkScript))

		ns, err := txscript.DecodeNameScript(out.PkScript)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  名称操作:\t%v\n", ns.Template())
		switch ns.Template() {
		case txscript.NameNewTy:
			fmt.Fprintf(&b, "  哈希:\t\t%x\n", ns.Hash())
		case txscript.NameFirstUpdateTy:
			fmt.Fprintf(&b, "  名称:\t\t%q\n", ns.Name())
			fmt.Fprintf(&b, "  随机数:\t%x\n", ns.Nonce())
			fmt.Fprintf(&b, "  值:\t\t%q\n", ns.Value())
		case txscript.NameUpdateTy:
			fmt.Fprintf(&b, "  名称:\t\t%q\n", ns.Name())
			fmt.Fprintf(&b, "  值:\t\t%q\n", ns.Value())
		}
		fmt.Fprintf(&b, "  公钥哈希:\t%x\n", ns.PubKeyHash())
	}

	return b.String()
}

// disasm 返回脚本的单行反汇编，无法解析的部分以 [error] 结尾
func disasm(script []byte) string {
	s, err := btcscript.DisasmString(script)
	if err != nil {
		return s + " [error]"
	}
	return s
}
