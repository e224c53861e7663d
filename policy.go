package namechain

import (
	"fmt"

	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/qinglongcn/namechain/txscript"
)

const (
	// maxStandardMultiSigKeys 是多重签名交易输出脚本中允许的最大公钥数量，以便将其视为标准。
	maxStandardMultiSigKeys = 3
)

// checkOutputStandard 检查输出脚本是否为标准脚本。
// 名称脚本总是标准的，其余脚本按 btcd 的脚本类别检查。
func checkOutputStandard(pkScript []byte) error {
	if txscript.IsNameScript(pkScript) {
		return nil
	}
	return checkPkScriptStandard(pkScript, btcscript.GetScriptClass(pkScript))
}

// checkPkScriptStandard 对交易输出脚本（公钥脚本）执行一系列检查，以确保它是“标准”公钥脚本。
// 标准公钥脚本是一种可识别的形式，对于多重签名脚本，仅包含 1 到 maxStandardMultiSigKeys 个公钥。
func checkPkScriptStandard(pkScript []byte, scriptClass btcscript.ScriptClass) error {
	switch scriptClass {
	case btcscript.MultiSigTy:
		numPubKeys, numSigs, err := btcscript.CalcMultiSigStats(pkScript)
		if err != nil {
			return fmt.Errorf("multi-signature script parse failure: %v", err)
		}

		// 标准多重签名公钥脚本必须包含 1 到 maxStandardMultiSigKeys 个公钥。
		if numPubKeys < 1 {
			return fmt.Errorf("multi-signature script with no pubkeys")
		}
		if numPubKeys > maxStandardMultiSigKeys {
			return fmt.Errorf("multi-signature script with %d public keys which is more than the allowed max of %d", numPubKeys, maxStandardMultiSigKeys)
		}

		// 标准多重签名公钥脚本必须至少有 1 个签名，且签名数量不得多于可用公钥。
		if numSigs < 1 {
			return fmt.Errorf("multi-signature script with no signatures")
		}
		if numSigs > numPubKeys {
			return fmt.Errorf("multi-signature script with %d signatures which is more than the available %d public keys", numSigs, numPubKeys)
		}

	case btcscript.NonStandardTy:
		return fmt.Errorf("non-standard script form")
	}

	return nil
}
