package namechain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/namechain/txscript"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/vrecan/death/v3"
	"go.uber.org/fx"
)

var (
	// ErrClientOpened 表示选项已被一个打开的客户端使用
	ErrClientOpened = errors.New("客户端已打开")

	// ErrNameNotFound 表示名称没有未花费的名称输出
	ErrNameNotFound = errors.New("名称不存在")

	// ErrNameConflict 表示名称有多个未花费的名称输出
	ErrNameConflict = errors.New("名称有多个未花费的输出")
)

// stopTimeout 是关闭客户端时等待各服务停止的时间
const stopTimeout = 15 * time.Second

// Client 提供了构建、记录与查询名称交易所需的各种函数
type Client struct {
	ctx    context.Context  // 全局上下文
	opt    *Options         // 选项配置
	params *chaincfg.Params // 网络参数
	utxos  *UTXOSet         // UTXO 集
	db     *SqliteDB        // 名称历史数据库
	store  *TxStore         // 原始交易存储
	app    *fx.App
}

// Open 返回一个新的客户端
func Open(opt *Options) (*Client, error) {
	// 1. 检查并设置选项
	if err := opt.CheckAndSetOptions(); err != nil {
		return nil, err
	}
	params, err := ParamsForNetwork(opt.Network)
	if err != nil {
		return nil, err
	}

	// 2. 日志
	if err := SetLog(opt.logDir(), opt.InstanceId, opt.Level()); err != nil {
		return nil, err
	}
	txscript.UseLogger(NewBtclogAdapter(logrus.WithField("module", "txscript")))

	c := &Client{
		ctx:    context.Background(),
		opt:    opt,
		params: params,
	}

	// fx 配置项
	opts := []fx.Option{
		fx.NopLogger,
		c.globalInit(),
		fx.Provide(
			NewUTXOSetService, // UTXO 集
			NewHistoryService, // 名称历史
			NewTxStoreService, // 交易存储
		),
		fx.Populate(
			&c.utxos,
			&c.db,
			&c.store,
		),
	}
	c.app = fx.New(opts...)
	if err := c.app.Err(); err != nil {
		return nil, err
	}

	// 启动所有服务，失败时 fx 会停止已经启动的服务
	if err := c.app.Start(c.ctx); err != nil {
		return nil, err
	}

	opt.opened = true // 客户端已打开
	logrus.Infof("客户端已打开，网络 %s，数据目录 %s", params.Name, opt.DataDir)
	return c, nil
}

// 全局初始化
func (c *Client) globalInit() fx.Option {
	return fx.Provide(
		func() context.Context {
			return c.ctx
		},
		func() *Options {
			return c.opt
		},
		func() *chaincfg.Params {
			return c.params
		},
	)
}

type NewUTXOSetInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewUTXOSetOutput struct {
	fx.Out

	UTXOs *UTXOSet // UTXO 集
}

// NewUTXOSetService 在客户端启动时打开 UTXO 数据库，关闭时关闭数据库
func NewUTXOSetService(lc fx.Lifecycle, input NewUTXOSetInput) (out NewUTXOSetOutput, err error) {
	utxos := new(UTXOSet)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			db, err := OpenUTXODB(input.Opt.utxoDir(), input.Opt.InMemory)
			if err != nil {
				logrus.Errorf("[NewUTXOSetService] 启动失败:\t%v", err)
				return err
			}
			utxos.db = db
			return nil
		},
		OnStop: func(_ context.Context) error {
			return utxos.db.Close()
		},
	})

	out.UTXOs = utxos
	return out, nil
}

type NewHistoryInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewHistoryOutput struct {
	fx.Out

	DB *SqliteDB // 名称历史数据库
}

// NewHistoryService 在客户端启动时打开名称历史数据库并创建数据表
func NewHistoryService(lc fx.Lifecycle, input NewHistoryInput) (out NewHistoryOutput, err error) {
	db := new(SqliteDB)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			opened, err := NewSqliteDB(input.Opt.dbDir(), DbFile)
			if err != nil {
				logrus.Errorf("[NewHistoryService] 启动失败:\t%v", err)
				return err
			}
			if err := opened.InitDBTable(); err != nil {
				opened.Close()
				return err
			}
			db.DB = opened.DB
			return nil
		},
		OnStop: func(_ context.Context) error {
			return db.Close()
		},
	})

	out.DB = db
	return out, nil
}

type NewTxStoreInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewTxStoreOutput struct {
	fx.Out

	Store *TxStore // 交易存储
}

// NewTxStoreService 创建交易存储，内存模式下使用内存文件系统
func NewTxStoreService(input NewTxStoreInput) (out NewTxStoreOutput, err error) {
	var fs afero.Fs = afero.NewOsFs()
	if input.Opt.InMemory {
		fs = afero.NewMemMapFs()
	}

	store, err := NewTxStore(fs, input.Opt.txDir())
	if err != nil {
		logrus.Errorf("[NewTxStoreService] 启动失败:\t%v", err)
		return out, err
	}
	out.Store = store
	return out, nil
}

// Params 返回网络参数
func (c *Client) Params() *chaincfg.Params {
	return c.params
}

// UTXOs 返回 UTXO 集
func (c *Client) UTXOs() *UTXOSet {
	return c.utxos
}

// NewTransaction 返回按选项配置的交易构建器
func (c *Client) NewTransaction() *Transaction {
	return NewTransaction(c.params, c.opt.OutputBuilder()).Fee(c.opt.TxFee)
}

// Spendable 返回可以用 addr 的密钥花费的输出
func (c *Client) Spendable(addr btcutil.Address) ([]*UnspentOutput, error) {
	pkh, err := pubKeyHashFromAddress(addr)
	if err != nil {
		return nil, err
	}
	return c.utxos.ForPubKeyHash(pkh)
}

// Record 保存交易，更新 UTXO 集，并为每个名称输出写入一条历史记录
func (c *Client) Record(tx *wire.MsgTx) error {
	txid, err := c.store.Save(tx)
	if err != nil {
		return err
	}
	if err := c.utxos.Apply(tx); err != nil {
		return fmt.Errorf("更新 UTXO 集失败: %w", err)
	}

	for vout, out := range tx.TxOut {
		if !txscript.IsNameScript(out.PkScript) {
			continue
		}

		exists, err := ExistsNameRecord(c.db, txid.String(), uint32(vout))
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		record, err := NewNameRecord(tx, uint32(vout))
		if err != nil {
			return err
		}
		if err := record.Create(c.db); err != nil {
			return err
		}
		logrus.Infof("记录 %s %q 于 %s:%d", record.Operation, record.Name, txid, vout)
	}
	return nil
}

// NameState 是名称的当前状态
type NameState struct {
	Name    string          // 名称
	Value   string          // 当前值
	Address btcutil.Address // 名称所有者
	Output  *UnspentOutput  // 当前的名称输出
	History []*NameRecord   // 按时间顺序的操作记录
}

// LookupName 返回名称的当前状态
func (c *Client) LookupName(name string) (*NameState, error) {
	utxos, err := c.utxos.FindByName(name)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	if len(utxos) > 1 {
		return nil, fmt.Errorf("%w: %q 有 %d 个", ErrNameConflict, name, len(utxos))
	}

	output := utxos[0]
	ns, err := txscript.DecodeNameScript(output.PkScript)
	if err != nil {
		return nil, err
	}
	addr, err := ns.Address(c.params)
	if err != nil {
		return nil, err
	}

	history, err := ListNameRecords(c.db, name)
	if err != nil {
		return nil, err
	}

	return &NameState{
		Name:    name,
		Value:   string(ns.Value()),
		Address: addr,
		Output:  output,
		History: history,
	}, nil
}

// Close 停止所有服务并关闭数据库
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(c.ctx, stopTimeout)
	defer cancel()

	err := c.app.Stop(ctx)
	c.opt.opened = false
	return err
}

// WaitForShutdown 阻塞，直到收到程序终止信号后关闭客户端
func (c *Client) WaitForShutdown() error {
	// syscall.SIGINT ctr+c触发
	// syscall.SIGTERM 当前进程被kill
	d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	return d.WaitForDeath(c)
}
