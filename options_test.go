package namechain

import (
	"testing"

	"github.com/qinglongcn/namechain/txscript"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestOptionsSaveLoad 选项保存为 JSON 后可以读回。
func TestOptionsSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()

	opt := DefaultOptions()
	opt.BuildInstanceId("node-1")
	opt.BuildNetwork("testnet3")
	opt.BuildNonceMode(txscript.NonceCommitment)
	opt.BuildInMemory()
	opt.TxFee = 49600
	require.NoError(t, opt.Save(fs, "/etc/namechain/options.json"))

	loaded, err := LoadOptions(fs, "/etc/namechain/options.json")
	require.NoError(t, err)
	require.Equal(t, opt, loaded)

	builder := loaded.OutputBuilder()
	require.Equal(t, txscript.NonceCommitment, builder.NonceMode)
	require.Equal(t, NetworkFee, builder.Fee)
	require.Equal(t, logrus.InfoLevel, loaded.Level())
}

// TestLoadOptionsDefaults 文件中缺少的字段使用默认值。
func TestLoadOptionsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "options.json", []byte(`{"instanceId":"x","logLevel":"debug"}`), 0644))

	opt, err := LoadOptions(fs, "options.json")
	require.NoError(t, err)
	require.Equal(t, "x", opt.InstanceId)
	require.Equal(t, logrus.DebugLevel, opt.Level())
	require.Equal(t, NamecoinParams.Name, opt.Network)
	require.Equal(t, FeeSecurityMargin, opt.TxFee)

	_, err = LoadOptions(fs, "missing.json")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "broken.json", []byte(`{`), 0644))
	_, err = LoadOptions(fs, "broken.json")
	require.Error(t, err)
}

// TestCheckAndSetOptions 测试选项检查。
func TestCheckAndSetOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(opt *Options)
	}{
		{"empty data dir", func(opt *Options) { opt.DataDir = "" }},
		{"bad log level", func(opt *Options) { opt.LogLevel = "loud" }},
		{"unknown network", func(opt *Options) { opt.Network = "bitcoin" }},
		{"unknown nonce mode", func(opt *Options) { opt.NonceMode = "sha256" }},
		{"name fee below network fee", func(opt *Options) { opt.NameFee = NetworkFee - 1 }},
		{"negative tx fee", func(opt *Options) { opt.TxFee = -1 }},
		{"already opened", func(opt *Options) { opt.opened = true }},
	}

	for _, test := range tests {
		opt := DefaultOptions()
		test.modify(opt)
		if err := opt.CheckAndSetOptions(); err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}

	opt := DefaultOptions()
	require.NoError(t, opt.CheckAndSetOptions())
	require.NotEmpty(t, opt.InstanceId)

	// 打开后 Build* 不再修改选项
	opt.opened = true
	opt.BuildNetwork("regtest")
	require.Equal(t, NamecoinParams.Name, opt.Network)
	require.ErrorIs(t, opt.CheckAndSetOptions(), ErrClientOpened)
}
