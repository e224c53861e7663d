package txscript

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// hexZeros 返回 n 个 0x30（字符 '0'）的十六进制形式。
func hexZeros(n int) string {
	return strings.Repeat("30", n)
}

// nameScriptVector 是一条名称脚本测试向量。
type nameScriptVector struct {
	name  string   // 测试描述
	asm   string   // ASM 文本
	raw   string   // 期望的二进制十六进制
	tmpl  Template // 期望的模板
	pkh   string   // 期望的公钥哈希
	canon string   // 反汇编输出，空时与 asm 相同
}

var nameScriptVectors = []nameScriptVector{
	{
		name: "name_new",
		asm:  "1 62e99f4a5b9fb17f7a36e2bfd4e0f7e7ff2b68fa OP_2DROP OP_DUP OP_HASH160 279ecb39bda7cfa2bb9ec8a4a307c5032ba73cf1 OP_EQUALVERIFY OP_CHECKSIG",
		raw:  "511462e99f4a5b9fb17f7a36e2bfd4e0f7e7ff2b68fa6d76a914279ecb39bda7cfa2bb9ec8a4a307c5032ba73cf188ac",
		tmpl: NameNewTy,
		pkh:  "279ecb39bda7cfa2bb9ec8a4a307c5032ba73cf1",
	},
	{
		name:  "name_new with mnemonic",
		asm:   "OP_NAME_NEW 743bbbb462a2c48a2ef9983c13e6ad220c71a9b2 OP_2DROP OP_DUP OP_HASH160 79d0e23967803a443a85533f261c6547d10b87d7 OP_EQUALVERIFY OP_CHECKSIG",
		raw:   "5114743bbbb462a2c48a2ef9983c13e6ad220c71a9b26d76a91479d0e23967803a443a85533f261c6547d10b87d788ac",
		tmpl:  NameNewTy,
		pkh:   "79d0e23967803a443a85533f261c6547d10b87d7",
		canon: "1 743bbbb462a2c48a2ef9983c13e6ad220c71a9b2 OP_2DROP OP_DUP OP_HASH160 79d0e23967803a443a85533f261c6547d10b87d7 OP_EQUALVERIFY OP_CHECKSIG",
	},
	{
		name: "name_firstupdate",
		asm:  "2 642f767368656c6c 47deef329a770b51 424d2d326355794a4e746b396574764b7268384570597332424d68346278786a507361354b OP_2DROP OP_2DROP OP_DUP OP_HASH160 7b727a6ffa179a35fc30721c19cf3fb169b7df8b OP_EQUALVERIFY OP_CHECKSIG",
		raw:  "5208642f767368656c6c0847deef329a770b5125424d2d326355794a4e746b396574764b7268384570597332424d68346278786a507361354b6d6d76a9147b727a6ffa179a35fc30721c19cf3fb169b7df8b88ac",
		tmpl: NameFirstUpdateTy,
		pkh:  "7b727a6ffa179a35fc30721c19cf3fb169b7df8b",
	},
	{
		name: "name_update",
		asm:  "3 74657374 424d2d356f4457354a7556636b566e53445364634d7879536935634e546164546866 OP_2DROP OP_DROP OP_DUP OP_HASH160 544415765c022729a8ac7bf904b836bcc7a5a026 OP_EQUALVERIFY OP_CHECKSIG",
		raw:  "53047465737422424d2d356f4457354a7556636b566e53445364634d7879536935634e5461645468666d7576a914544415765c022729a8ac7bf904b836bcc7a5a02688ac",
		tmpl: NameUpdateTy,
		pkh:  "544415765c022729a8ac7bf904b836bcc7a5a026",
	},
	{
		name: "name_firstupdate with 400 byte value",
		asm: "2 " + hexZeros(10) + " ece23059be5f0c41cbac5a10d04c10a685e4935d " + hexZeros(400) +
			" OP_2DROP OP_2DROP OP_DUP OP_HASH160 79e37b64460bc8935f26b067b10a98fb34cd3eea OP_EQUALVERIFY OP_CHECKSIG",
		raw: "520a" + hexZeros(10) + "14ece23059be5f0c41cbac5a10d04c10a685e4935d" + "4d9001" + hexZeros(400) +
			"6d6d76a91479e37b64460bc8935f26b067b10a98fb34cd3eea88ac",
		tmpl: NameFirstUpdateTy,
		pkh:  "79e37b64460bc8935f26b067b10a98fb34cd3eea",
	},
	{
		name: "name_firstupdate with 200 byte name",
		asm: "2 " + hexZeros(200) + " 229b995a76a5efa7e4d01766ba8e1fc960ab14e7 30303030" +
			" OP_2DROP OP_2DROP OP_DUP OP_HASH160 2ad843fc5cb10ffb09fd593fe2d9089f5cb5fbf5 OP_EQUALVERIFY OP_CHECKSIG",
		raw: "524cc8" + hexZeros(200) + "14229b995a76a5efa7e4d01766ba8e1fc960ab14e7" + "0430303030" +
			"6d6d76a9142ad843fc5cb10ffb09fd593fe2d9089f5cb5fbf588ac",
		tmpl: NameFirstUpdateTy,
		pkh:  "2ad843fc5cb10ffb09fd593fe2d9089f5cb5fbf5",
	},
}

// TestNameScriptVectors 测试文本与二进制两条路径得到相同的字节，并能互相转换。
func TestNameScriptVectors(t *testing.T) {
	t.Parallel()

	for _, test := range nameScriptVectors {
		raw, err := hex.DecodeString(test.raw)
		require.NoError(t, err, test.name)

		// 文本 -> 二进制
		ns, err := ParseNameScript(test.asm)
		if err != nil {
			t.Fatalf("%s: ParseNameScript failed: %v", test.name, err)
		}
		if !bytes.Equal(ns.Bytes(), raw) {
			t.Errorf("%s: serialized script mismatch\ngot:  %x\nwant: %x", test.name, ns.Bytes(), raw)
			continue
		}
		if ns.Template() != test.tmpl {
			t.Errorf("%s: template %v, want %v", test.name, ns.Template(), test.tmpl)
		}

		// 与通用解析器得到的字节一致
		generic, err := GenericParser{}.Parse(strings.Fields(test.asm))
		require.NoError(t, err, test.name)
		require.Equal(t, raw, generic, test.name)

		// 二进制 -> 块 -> 二进制
		decoded, err := DecodeNameScript(raw)
		if err != nil {
			t.Fatalf("%s: DecodeNameScript failed: %v", test.name, err)
		}
		if !bytes.Equal(decoded.Bytes(), raw) {
			t.Errorf("%s: decode/serialize round trip mismatch\n%s", test.name, spew.Sdump(decoded.Chunks()))
		}
		require.Equal(t, test.tmpl, decoded.Template(), test.name)
		require.Equal(t, test.pkh, hex.EncodeToString(decoded.PubKeyHash()), test.name)

		// 二进制 -> 文本
		want := test.canon
		if want == "" {
			want = test.asm
		}
		require.Equal(t, want, decoded.String(), test.name)
	}
}

// TestNameScriptFields 测试各模板的字段访问。
func TestNameScriptFields(t *testing.T) {
	t.Parallel()

	ns, err := ParseNameScript(nameScriptVectors[2].asm)
	require.NoError(t, err)
	require.Equal(t, "d/vshell", string(ns.Name()))
	require.Equal(t, "47deef329a770b51", hex.EncodeToString(ns.Nonce()))
	require.Equal(t, "BM-2cUyJNtk9etvKrh8EpYs2BMh4bxxjPsa5K", string(ns.Value()))
	require.Nil(t, ns.Hash())

	ns, err = ParseNameScript(nameScriptVectors[3].asm)
	require.NoError(t, err)
	require.Equal(t, "test", string(ns.Name()))
	require.Equal(t, "BM-5oDW5JuVckVnSDSdcMxySi5cNTadThf", string(ns.Value()))
	require.Nil(t, ns.Nonce())

	ns, err = ParseNameScript(nameScriptVectors[0].asm)
	require.NoError(t, err)
	require.Nil(t, ns.Name())
	require.Nil(t, ns.Value())
	require.Equal(t, "62e99f4a5b9fb17f7a36e2bfd4e0f7e7ff2b68fa", hex.EncodeToString(ns.Hash()))
}

// TestParseNameScriptErrors 测试严格解析返回的错误类型。
func TestParseNameScriptErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		asm  string
		code ErrorCode
	}{
		{
			name: "p2pkh",
			asm:  "OP_DUP OP_HASH160 279ecb39bda7cfa2bb9ec8a4a307c5032ba73cf1 OP_EQUALVERIFY OP_CHECKSIG",
			code: ErrNotANameScript,
		},
		{
			name: "empty",
			asm:  "",
			code: ErrNotANameScript,
		},
		{
			name: "name_new with 19 byte hash",
			asm:  "1 62e99f4a5b9fb17f7a36e2bfd4e0f7e7ff2b68 OP_2DROP OP_DUP OP_HASH160 279ecb39bda7cfa2bb9ec8a4a307c5032ba73cf1 OP_EQUALVERIFY OP_CHECKSIG",
			code: ErrMalformedNameScript,
		},
		{
			name: "name_update with wrong drop",
			asm:  "3 74657374 76616c7565 OP_2DROP OP_2DROP OP_DUP OP_HASH160 544415765c022729a8ac7bf904b836bcc7a5a026 OP_EQUALVERIFY OP_CHECKSIG",
			code: ErrMalformedNameScript,
		},
	}

	for _, test := range tests {
		_, err := ParseNameScript(test.asm)
		if !IsErrorCode(err, test.code) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.code)
		}
	}
}

// TestDecodeNameScriptErrors 测试二进制解码的错误类型。
func TestDecodeNameScriptErrors(t *testing.T) {
	t.Parallel()

	p2pkh, _ := hex.DecodeString("76a914279ecb39bda7cfa2bb9ec8a4a307c5032ba73cf188ac")
	_, err := DecodeNameScript(p2pkh)
	require.ErrorIs(t, err, ErrNotANameScript)

	truncated, _ := hex.DecodeString("511462e99f4a5b9f")
	_, err = DecodeNameScript(truncated)
	require.ErrorIs(t, err, ErrTruncatedScript)
}
