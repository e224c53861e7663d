// 网络参数与名称交易常量

package namechain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/namechain/txscript"
)

const (
	// NameTxVersion 是包含名称输出的交易版本号
	NameTxVersion = txscript.NameTxVersion

	// NetworkFee 是每个名称输出必须锁定的金额，0.01 NMC
	NetworkFee int64 = txscript.NameOperationFee

	// FeeSecurityMargin 是默认的交易手续费，0.005 NMC
	FeeSecurityMargin int64 = 500000
)

// namecoinNet 是 Namecoin 主网的消息魔数 f9beb4fe
const namecoinNet wire.BitcoinNet = 0xfeb4bef9

// NamecoinParams 定义 Namecoin 主网的网络参数
var NamecoinParams = chaincfg.Params{
	Name:        "namecoin",
	Net:         namecoinNet,
	DefaultPort: "8334",
	DNSSeeds: []chaincfg.DNSSeed{
		{Host: "nmc.seed.quisquis.de", HasFiltering: false},
		{Host: "namecoindnsseed.digi-masters.com", HasFiltering: false},
		{Host: "namecoindnsseed.digi-masters.uk", HasFiltering: false},
		{Host: "dnsseed.namecoin.webbtc.com", HasFiltering: false},
	},

	// 地址编码魔数
	PubKeyHashAddrID: 0x34, // 以 M 或 N 开头
	ScriptHashAddrID: 0x0d, // 以 6 开头
	PrivateKeyID:     0xb4,

	// 人类可读的隔离见证前缀
	Bech32HRPSegwit: "nc",

	// BIP32 分层确定性扩展密钥魔数，与比特币主网相同
	HDPrivateKeyID: [4]byte{0x04, 0x88, 0xad, 0xe4}, // xprv
	HDPublicKeyID:  [4]byte{0x04, 0x88, 0xb2, 0x1e}, // xpub

	// BIP44 币种
	HDCoinType: 7,
}

func init() {
	// 注册后 btcutil 可以按网络识别 Namecoin 地址
	if err := chaincfg.Register(&NamecoinParams); err != nil {
		panic(fmt.Sprintf("failed to register namecoin network: %v", err))
	}
}

// ParamsForNetwork 根据网络名称返回网络参数
func ParamsForNetwork(name string) (*chaincfg.Params, error) {
	switch name {
	case "", NamecoinParams.Name:
		return &NamecoinParams, nil
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params, nil
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams, nil
	}
	return nil, fmt.Errorf("未知的网络 %q", name)
}
