package namechain

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/namechain/txscript"
)

const (
	nameOperationTable = "name_operation"
)

// NameRecord 是一次名称操作的数据库对象
type NameRecord struct {
	Id        int    // 自增长主键
	TxID      string // 交易 ID
	Vout      uint32 // 名称输出的索引
	Operation string // 模板名称：name_new、name_firstupdate 或 name_update
	Name      string // 名称，name_new 为空
	Value     string // 值，只有 name_firstupdate 与 name_update 有值
	Script    string // 十六进制编码的输出脚本
}

// InitDBTable 数据库表
func (s *SqliteDB) InitDBTable() error {
	// 创建名称操作数据库表
	if err := s.createNameOperationTable(); err != nil {
		return err
	}

	return nil
}

// createNameOperationTable 创建名称操作数据库表
func (s *SqliteDB) createNameOperationTable() error {
	table := []string{
		"id INTEGER PRIMARY KEY AUTOINCREMENT", // 自增长主键
		"txID VARCHAR(64)",                     // 交易 ID
		"vout INTEGER",                         // 输出索引
		"operation VARCHAR(20)",                // 名称操作
		"name BLOB",                            // 名称
		"value BLOB",                           // 值
		"script TEXT",                          // 输出脚本
		"UNIQUE(txID, vout)",
	}

	if err := s.CreateTable(nameOperationTable, table); err != nil {
		return fmt.Errorf("数据库操作失败: %w", err)
	}

	return nil
}

// NewNameRecord 从交易的名称输出创建记录
func NewNameRecord(tx *wire.MsgTx, vout uint32) (*NameRecord, error) {
	if int(vout) >= len(tx.TxOut) {
		return nil, fmt.Errorf("输出索引 %d 超出范围", vout)
	}

	ns, err := txscript.DecodeNameScript(tx.TxOut[vout].PkScript)
	if err != nil {
		return nil, err
	}

	return &NameRecord{
		TxID:      tx.TxHash().String(),
		Vout:      vout,
		Operation: ns.Template().String(),
		Name:      string(ns.Name()),
		Value:     string(ns.Value()),
		Script:    hex.EncodeToString(ns.Bytes()),
	}, nil
}

// ExistsNameRecord 判断名称操作记录是否存在
func ExistsNameRecord(s *SqliteDB, txID string, vout uint32) (bool, error) {
	conditions := []string{"txID=?", "vout=?"} // 查询条件
	args := []interface{}{txID, vout}           // 查询条件对应的值
	exists, err := s.Exists(nameOperationTable, conditions, args)
	if err != nil {
		return exists, fmt.Errorf("数据库操作失败: %w", err)
	}

	return exists, nil
}

// Create 保存名称操作记录到数据库
func (nr *NameRecord) Create(s *SqliteDB) error {
	data := map[string]interface{}{
		"txID":      nr.TxID,
		"vout":      nr.Vout,
		"operation": nr.Operation,
		"name":      []byte(nr.Name),
		"value":     []byte(nr.Value),
		"script":    nr.Script,
	}

	if err := s.Insert(nameOperationTable, data); err != nil {
		return fmt.Errorf("数据库操作失败: %w", err)
	}

	return nil
}

// ListNameRecords 按写入顺序返回某个名称的操作记录
func ListNameRecords(s *SqliteDB, name string) ([]*NameRecord, error) {
	columns := []string{"id", "txID", "vout", "operation", "name", "value", "script"}
	rows, err := s.Query(nameOperationTable, columns, []string{"name=?"}, []interface{}{[]byte(name)}, "id")
	if err != nil {
		return nil, fmt.Errorf("数据库操作失败: %w", err)
	}
	defer rows.Close()

	var records []*NameRecord
	for rows.Next() {
		var (
			nr          NameRecord
			name, value []byte
		)
		if err := rows.Scan(&nr.Id, &nr.TxID, &nr.Vout, &nr.Operation, &name, &value, &nr.Script); err != nil {
			return nil, fmt.Errorf("数据库操作失败: %w", err)
		}
		nr.Name, nr.Value = string(name), string(value)
		records = append(records, &nr)
	}
	return records, rows.Err()
}
