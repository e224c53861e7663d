package namechain

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/qinglongcn/namechain/txscript"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Options 是用于打开名称客户端的参数
type Options struct {
	DataDir    string `json:"dataDir"`    // 数据根目录
	InstanceId string `json:"instanceId"` // 实例标识符，用于区分日志文件
	LogLevel   string `json:"logLevel"`   // 日志级别
	Network    string `json:"network"`    // 网络名称：namecoin、testnet3 或 regtest

	NameFee   int64  `json:"nameFee"`   // 名称输出锁定的金额
	TxFee     int64  `json:"txFee"`     // 默认交易手续费
	NonceMode string `json:"nonceMode"` // name_new 哈希槽位的生成方式：passthrough 或 commitment

	InMemory bool `json:"inMemory"` // UTXO 集只保存在内存中

	opened bool // 客户端已打开
}

// DefaultOptions 设置一个推荐选项列表
func DefaultOptions() *Options {
	return &Options{
		DataDir:   "namechain",
		LogLevel:  logrus.InfoLevel.String(),
		Network:   NamecoinParams.Name,
		NameFee:   NetworkFee,
		TxFee:     FeeSecurityMargin,
		NonceMode: txscript.NoncePassthrough.String(),
	}
}

// LoadOptions 从 fs 上的 JSON 文件读取选项，未出现的字段使用默认值
func LoadOptions(fs afero.Fs, path string) (*Options, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	opt := DefaultOptions()
	if err := json.Unmarshal(data, opt); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return opt, opt.CheckAndSetOptions()
}

// Save 把选项以 JSON 写入 fs
func (opt *Options) Save(fs afero.Fs, path string) error {
	data, err := json.MarshalIndent(opt, "", "  ")
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// BuildInstanceId 设置实例ID
func (opt *Options) BuildInstanceId(instanceId string) {
	if opt.opened {
		return
	}
	opt.InstanceId = instanceId
}

// BuildNetwork 设置网络
func (opt *Options) BuildNetwork(network string) {
	if opt.opened {
		return
	}
	opt.Network = network
}

// BuildNonceMode 设置随机数模式
func (opt *Options) BuildNonceMode(mode txscript.NonceMode) {
	if opt.opened {
		return
	}
	opt.NonceMode = mode.String()
}

// BuildInMemory 设置 UTXO 集只保存在内存中
func (opt *Options) BuildInMemory() {
	if opt.opened {
		return
	}
	opt.InMemory = true
}

// BuildRootPath 设置数据根路径
func (opt *Options) BuildRootPath(path string) {
	// 检查路径是否为空
	if path == "" {
		return
	}

	// 检查路径是否是一个绝对路径
	if !filepath.IsAbs(path) {
		return
	}

	// 检查路径是否存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// 如果路径不存在，尝试创建它
		if err := os.MkdirAll(path, 0755); err != nil {
			return
		}
	}

	opt.DataDir = path
}

// CheckAndSetOptions 检查并设置选项
func (opt *Options) CheckAndSetOptions() error {
	if opt.opened {
		return fmt.Errorf("%w: '%s'", ErrClientOpened, opt.InstanceId)
	}
	if opt.DataDir == "" {
		return fmt.Errorf("数据目录为空")
	}
	if opt.InstanceId == "" {
		opt.InstanceId = defaultInstanceId()
	}
	if opt.LogLevel == "" {
		opt.LogLevel = logrus.InfoLevel.String()
	}
	if _, err := logrus.ParseLevel(opt.LogLevel); err != nil {
		return err
	}
	if _, err := ParamsForNetwork(opt.Network); err != nil {
		return err
	}
	if _, err := txscript.ParseNonceMode(opt.NonceMode); err != nil {
		return err
	}
	if opt.NameFee < NetworkFee {
		return fmt.Errorf("名称费用 %d 低于网络要求的 %d", opt.NameFee, NetworkFee)
	}
	if opt.TxFee < 0 {
		return fmt.Errorf("无效的手续费 %d", opt.TxFee)
	}

	return nil
}

// Level 返回日志级别
func (opt *Options) Level() logrus.Level {
	level, err := logrus.ParseLevel(opt.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// OutputBuilder 返回按选项配置的名称输出构建器
func (opt *Options) OutputBuilder() txscript.OutputBuilder {
	mode, _ := txscript.ParseNonceMode(opt.NonceMode)
	return txscript.OutputBuilder{Fee: opt.NameFee, NonceMode: mode}
}

// 数据目录下的子目录
func (opt *Options) logDir() string  { return filepath.Join(opt.DataDir, "logs") }
func (opt *Options) utxoDir() string { return filepath.Join(opt.DataDir, "utxo") }
func (opt *Options) dbDir() string   { return filepath.Join(opt.DataDir, "db") }
func (opt *Options) txDir() string   { return filepath.Join(opt.DataDir, "tx") }

// defaultInstanceId 使用主要网卡的 MAC 地址作为实例标识，找不到时使用随机值
func defaultInstanceId() string {
	if interfaces, err := net.Interfaces(); err == nil {
		for _, iface := range interfaces {
			if len(iface.HardwareAddr) == 0 || iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
				continue
			}
			// 跳过虚拟网卡
			if strings.Contains(iface.Name, "vmnet") || strings.Contains(iface.Name, "vboxnet") {
				continue
			}
			return strings.ReplaceAll(iface.HardwareAddr.String(), ":", "")
		}
	}

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "default"
	}
	return hex.EncodeToString(buf)
}
