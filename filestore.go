// 原始交易的文件存储
package namechain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/spf13/afero"
)

// TxStore 把交易以 <txid>.hex 文件的形式保存在 BasePath 下
type TxStore struct {
	Fs       afero.Fs
	BasePath string
}

// NewTxStore 创建一个新的 TxStore 实例
func NewTxStore(fs afero.Fs, basePath string) (*TxStore, error) {
	if err := fs.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &TxStore{Fs: fs, BasePath: basePath}, nil
}

// path 返回交易文件的路径
func (ts *TxStore) path(txid chainhash.Hash) string {
	return filepath.Join(ts.BasePath, txid.String()+".hex")
}

// Save 保存交易，返回交易 ID
func (ts *TxStore) Save(tx *wire.MsgTx) (chainhash.Hash, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return chainhash.Hash{}, err
	}

	txid := tx.TxHash()
	data := []byte(hex.EncodeToString(buf.Bytes()))
	if err := afero.WriteFile(ts.Fs, ts.path(txid), data, 0644); err != nil {
		return chainhash.Hash{}, fmt.Errorf("failed to write file: %w", err)
	}
	return txid, nil
}

// Load 读取交易
func (ts *TxStore) Load(txid chainhash.Hash) (*wire.MsgTx, error) {
	data, err := afero.ReadFile(ts.Fs, ts.path(txid))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid transaction file %s: %w", txid, err)
	}

	tx := new(wire.MsgTx)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	if tx.TxHash() != txid {
		return nil, fmt.Errorf("transaction file %s contains %s", txid, tx.TxHash())
	}
	return tx, nil
}

// Exists 判断交易是否已保存
func (ts *TxStore) Exists(txid chainhash.Hash) (bool, error) {
	return afero.Exists(ts.Fs, ts.path(txid))
}
