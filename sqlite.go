package namechain

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const (
	DbFile = "database.db"
)

// SqliteDB 封装了 sqlite 数据库的常用操作
type SqliteDB struct {
	DB *sql.DB
}

// NewSqliteDB 在 dir 目录下打开名为 file 的数据库
func NewSqliteDB(dir, file string) (*SqliteDB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// sqlite 同一时间只允许一个写入者
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return &SqliteDB{DB: db}, nil
}

// Close 关闭数据库
func (s *SqliteDB) Close() error {
	return s.DB.Close()
}

// CreateTable 创建数据表，columns 为列定义
func (s *SqliteDB) CreateTable(name string, columns []string) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(columns, ", "))
	if _, err := s.DB.Exec(query); err != nil {
		logrus.Errorf("[SqliteDB] 创建表 %s 失败: %v", name, err)
		return err
	}
	return nil
}

// Insert 插入一行数据，data 的键为列名
func (s *SqliteDB) Insert(table string, data map[string]interface{}) error {
	// 列按名称排序，生成的语句与参数顺序一致
	columns := make([]string, 0, len(data))
	for column := range data {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		placeholders[i] = "?"
		args[i] = data[column]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := s.DB.Exec(query, args...); err != nil {
		logrus.Errorf("[SqliteDB] 插入 %s 失败: %v", table, err)
		return err
	}
	return nil
}

// Exists 判断满足全部条件的行是否存在
func (s *SqliteDB) Exists(table string, conditions []string, args []interface{}) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", table, where(conditions))

	var exists bool
	if err := s.DB.QueryRow(query, args...).Scan(&exists); err != nil {
		logrus.Errorf("[SqliteDB] 查询 %s 失败: %v", table, err)
		return false, err
	}
	return exists, nil
}

// Query 查询满足全部条件的行，orderBy 为空时不排序
func (s *SqliteDB) Query(table string, columns, conditions []string, args []interface{}, orderBy string) (*sql.Rows, error) {
	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(columns, ", "), table, where(conditions))
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	return s.DB.Query(query, args...)
}

// where 用 AND 连接查询条件
func where(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}
