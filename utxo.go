package namechain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/dgraph-io/badger/v4"
	"github.com/qinglongcn/namechain/txscript"
	"github.com/sirupsen/logrus"
)

var (
	utxoPrefix = []byte("utxo-") // 未花费输出的键值前缀
	namePrefix = []byte("name-") // 名称索引的键值前缀

	// ErrUTXONotFound 表示输出不在 UTXO 集中
	ErrUTXONotFound = errors.New("UTXO 不存在")
)

// outPointSize 是交易 ID 加输出索引的字节数
const outPointSize = chainhash.HashSize + 4

// UnspentOutput 是一个未花费的交易输出
type UnspentOutput struct {
	TxID     chainhash.Hash // 交易 ID
	Index    uint32         // 输出索引
	Amount   int64          // 金额（satoshi）
	PkScript []byte         // 锁定脚本
}

// NewUnspentOutput 从交易的第 index 个输出创建 UnspentOutput
func NewUnspentOutput(tx *wire.MsgTx, index uint32) *UnspentOutput {
	out := tx.TxOut[index]
	return &UnspentOutput{
		TxID:     tx.TxHash(),
		Index:    index,
		Amount:   out.Value,
		PkScript: out.PkScript,
	}
}

// OutPoint 返回该输出的引用
func (u *UnspentOutput) OutPoint() wire.OutPoint {
	return wire.OutPoint{Hash: u.TxID, Index: u.Index}
}

// PubKeyHash 返回锁定该输出的公钥哈希，名称输出与 P2PKH 输出以外返回 nil
func (u *UnspentOutput) PubKeyHash() []byte {
	if ns, err := txscript.DecodeNameScript(u.PkScript); err == nil {
		return ns.PubKeyHash()
	}
	if btcscript.GetScriptClass(u.PkScript) == btcscript.PubKeyHashTy {
		return u.PkScript[3:23]
	}
	return nil
}

// outPointKey 返回 utxo- 前缀的键：交易 ID 加大端序的输出索引
func outPointKey(op wire.OutPoint) []byte {
	key := make([]byte, 0, len(utxoPrefix)+outPointSize)
	key = append(key, utxoPrefix...)
	key = append(key, op.Hash[:]...)
	return binary.BigEndian.AppendUint32(key, op.Index)
}

// namePrefixKey 返回某个名称的索引前缀，名称前写入 1 字节长度使前缀互不包含
func namePrefixKey(name []byte) []byte {
	key := make([]byte, 0, len(namePrefix)+1+len(name))
	key = append(key, namePrefix...)
	key = append(key, byte(len(name)))
	return append(key, name...)
}

// nameKey 返回名称索引的键
func nameKey(name []byte, op wire.OutPoint) []byte {
	key := namePrefixKey(name)
	key = append(key, op.Hash[:]...)
	return binary.BigEndian.AppendUint32(key, op.Index)
}

// outPointFromKey 从键的末尾解析输出引用
func outPointFromKey(key []byte) (wire.OutPoint, error) {
	if len(key) < outPointSize {
		return wire.OutPoint{}, fmt.Errorf("无效的键 %x", key)
	}
	tail := key[len(key)-outPointSize:]

	var op wire.OutPoint
	copy(op.Hash[:], tail[:chainhash.HashSize])
	op.Index = binary.BigEndian.Uint32(tail[chainhash.HashSize:])
	return op, nil
}

// UTXOSet 代表UTXO集，并维护名称到名称输出的索引
type UTXOSet struct {
	db *badger.DB
}

// OpenUTXODB 打开 badger 数据库，inMemory 为真时不落盘
func OpenUTXODB(dir string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 UTXO 数据库失败: %w", err)
	}
	return db, nil
}

// NewUTXOSet 返回基于 db 的 UTXO 集
func NewUTXOSet(db *badger.DB) *UTXOSet {
	return &UTXOSet{db: db}
}

// Put 保存一个未花费输出
func (u *UTXOSet) Put(utxo *UnspentOutput) error {
	return u.db.Update(func(txn *badger.Txn) error {
		return putUTXO(txn, utxo)
	})
}

// Get 返回 op 对应的未花费输出
func (u *UTXOSet) Get(op wire.OutPoint) (*UnspentOutput, error) {
	var utxo *UnspentOutput
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		utxo, err = getUTXO(txn, op)
		return err
	})
	return utxo, err
}

// Delete 删除 op 对应的未花费输出
func (u *UTXOSet) Delete(op wire.OutPoint) error {
	return u.db.Update(func(txn *badger.Txn) error {
		return deleteUTXO(txn, op)
	})
}

// FindByName 返回锁定在名称输出中的未花费输出
func (u *UTXOSet) FindByName(name string) ([]*UnspentOutput, error) {
	var utxos []*UnspentOutput

	err := u.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		// 名称索引只有键
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := namePrefixKey([]byte(name))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			op, err := outPointFromKey(it.Item().Key())
			if err != nil {
				return err
			}
			utxo, err := getUTXO(txn, op)
			if err != nil {
				return err
			}
			utxos = append(utxos, utxo)
		}
		return nil
	})
	return utxos, err
}

// ForPubKeyHash 返回锁定到 pubKeyHash 的所有未花费输出
func (u *UTXOSet) ForPubKeyHash(pubKeyHash []byte) ([]*UnspentOutput, error) {
	var utxos []*UnspentOutput

	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		// 使用前缀来查找所有相关的 UTXO
		for it.Seek(utxoPrefix); it.ValidForPrefix(utxoPrefix); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			utxo := new(UnspentOutput)
			if err := DecodeFromBytes(v, utxo); err != nil {
				return err
			}
			if bytes.Equal(utxo.PubKeyHash(), pubKeyHash) {
				utxos = append(utxos, utxo)
			}
		}
		return nil
	})
	return utxos, err
}

// Count 返回UTXO集中未花费输出的数量
func (u *UTXOSet) Count() (int, error) {
	var counter int

	err := u.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(utxoPrefix); it.ValidForPrefix(utxoPrefix); it.Next() {
			counter++
		}
		return nil
	})
	return counter, err
}

// Apply 使用交易更新UTXO集：删除被花费的输出，加入新的输出
// 不在集合中的输入被忽略，OP_RETURN 输出不可花费，不会加入集合
func (u *UTXOSet) Apply(tx *wire.MsgTx) error {
	return u.db.Update(func(txn *badger.Txn) error {
		for _, in := range tx.TxIn {
			err := deleteUTXO(txn, in.PreviousOutPoint)
			if errors.Is(err, ErrUTXONotFound) {
				logrus.Debugf("[UTXOSet] 输入 %v 不在 UTXO 集中", in.PreviousOutPoint)
				continue
			}
			if err != nil {
				return err
			}
		}

		for idx, out := range tx.TxOut {
			if btcscript.GetScriptClass(out.PkScript) == btcscript.NullDataTy {
				continue
			}
			if err := putUTXO(txn, NewUnspentOutput(tx, uint32(idx))); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByPrefix 删除键以 prefix 开头的所有记录
func (u *UTXOSet) DeleteByPrefix(prefix []byte) error {
	// 定义一个批量删除记录的函数
	deleteKeys := func(keysForDelete [][]byte) error {
		return u.db.Update(func(txn *badger.Txn) error {
			for _, key := range keysForDelete {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// 分批删除，避免单个事务过大
	collectSize := 100000
	return u.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		keysForDelete := make([][]byte, 0, collectSize)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keysForDelete = append(keysForDelete, it.Item().KeyCopy(nil))

			if len(keysForDelete) == collectSize {
				if err := deleteKeys(keysForDelete); err != nil {
					return err
				}
				keysForDelete = make([][]byte, 0, collectSize)
			}
		}

		if len(keysForDelete) > 0 {
			return deleteKeys(keysForDelete)
		}
		return nil
	})
}

// Reset 清空 UTXO 集与名称索引
func (u *UTXOSet) Reset() error {
	if err := u.DeleteByPrefix(utxoPrefix); err != nil {
		return err
	}
	return u.DeleteByPrefix(namePrefix)
}

// putUTXO 写入输出，名称输出同时写入名称索引
func putUTXO(txn *badger.Txn, utxo *UnspentOutput) error {
	value, err := EncodeToBytes(utxo)
	if err != nil {
		return err
	}

	op := utxo.OutPoint()
	if err := txn.Set(outPointKey(op), value); err != nil {
		return err
	}

	if ns, err := txscript.DecodeNameScript(utxo.PkScript); err == nil && ns.Template() != txscript.NameNewTy {
		return txn.Set(nameKey(ns.Name(), op), nil)
	}
	return nil
}

// getUTXO 读取输出
func getUTXO(txn *badger.Txn, op wire.OutPoint) (*UnspentOutput, error) {
	item, err := txn.Get(outPointKey(op))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrUTXONotFound, op)
	}
	if err != nil {
		return nil, err
	}

	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	utxo := new(UnspentOutput)
	if err := DecodeFromBytes(v, utxo); err != nil {
		return nil, err
	}
	return utxo, nil
}

// deleteUTXO 删除输出及其名称索引
func deleteUTXO(txn *badger.Txn, op wire.OutPoint) error {
	utxo, err := getUTXO(txn, op)
	if err != nil {
		return err
	}

	if ns, err := txscript.DecodeNameScript(utxo.PkScript); err == nil && ns.Template() != txscript.NameNewTy {
		if err := txn.Delete(nameKey(ns.Name(), op)); err != nil {
			return err
		}
	}
	return txn.Delete(outPointKey(op))
}
