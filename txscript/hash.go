// 公钥哈希与名称承诺哈希。
package txscript

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Hash160 计算 RIPEMD160(SHA256(data))，即公钥哈希。
func Hash160(data []byte) []byte {
	// 使用SHA256算法对数据进行哈希
	sum := sha256.Sum256(data)

	// 将SHA256哈希的结果写入RIPEMD160哈希器，hash.Hash 的 Write 不会返回错误
	hasher := ripemd160.New()
	hasher.Write(sum[:])

	return hasher.Sum(nil)
}

// NameCommitment 计算 name_new 的承诺哈希 Hash160(rand || name)。
// name_firstupdate 公开 rand 与 name 后，任何人都可以据此验证先前的 name_new。
func NameCommitment(rand, name []byte) []byte {
	buf := make([]byte, 0, len(rand)+len(name))
	buf = append(buf, rand...)
	buf = append(buf, name...)
	return Hash160(buf)
}
