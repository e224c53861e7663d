// 包的文档说明，描述 txscript 包的目的和总体用途

/*
txscript 包实现了 Namecoin 名称脚本的编解码与签名支持。

Namecoin 在比特币脚本的基础上增加了三种名称操作脚本：name_new、name_firstupdate 和 name_update。
这三种脚本都是在标准的支付到公钥哈希（P2PKH）脚本前面加上一段名称前缀，
前缀中的数据在执行时会被 OP_2DROP / OP_DROP 丢弃，因此签名方式与普通 P2PKH 完全相同。

底层的脚本分词、反汇编、签名哈希与通用脚本构建均由 github.com/btcsuite/btcd/txscript 提供，
本包只在其之上扩展名称操作码与名称模板。

# 模板

	name_new          OP_NAME_NEW <hash> OP_2DROP OP_DUP OP_HASH160 <pubkeyhash> OP_EQUALVERIFY OP_CHECKSIG
	name_firstupdate  OP_NAME_FIRSTUPDATE <name> <rand> <value> OP_2DROP OP_2DROP OP_DUP OP_HASH160 <pubkeyhash> OP_EQUALVERIFY OP_CHECKSIG
	name_update       OP_NAME_UPDATE <name> <value> OP_2DROP OP_DROP OP_DUP OP_HASH160 <pubkeyhash> OP_EQUALVERIFY OP_CHECKSIG

名称操作码的数值与 OP_1、OP_2、OP_3 相同，文本形式中两者可以互换。

# 文本解析

ParseScript 按优先级依次尝试已注册的模板匹配器，名称模板优先，均不匹配时回退到通用解析器。
解析器链由 ParserChain 组合，调用方可以注册自己的匹配器而无需替换通用解析器。

# 错误

该包返回的错误类型为 txscript.Error。
调用者可以通过 errors.Is / errors.As 或便捷函数 IsErrorCode 检查特定的错误代码。
分类失败不是错误：Classify 与 ClassifyChunks 返回 NonNameTy。
*/
package txscript

/**

builder.go			名称输出构建器，生成 name_new / name_firstupdate / name_update 输出。
chunk.go			脚本块的编码与解码，包括推送数据操作码的选择。
classify.go			名称模板的文本与二进制分类。
error.go			定义了名称脚本处理过程中可能遇到的错误类型。
hash.go				公钥哈希与名称承诺哈希。
input.go			交易输入的能力接口以及 P2PKH 与名称输入两种实现。
log.go				包级日志记录器。
namescript.go		已分类的名称脚本值及其字段访问。
opcode.go			名称操作码扩展集合与操作码解析器。
parser.go			文本脚本解析器链。
signature.go		交易签名对象及解锁脚本模式判断。
template.go			三种名称模板的语法定义。

*/
