package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcscript "github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

const (
	// name_new 输出，锁定到 cQjJfm... 的公钥哈希
	nameNewScript = "511414672014d25a6e99e54ef38d35594beb101c184f6d76a914ab23f4d4398efcddf01a31bbc1306bb96caf22b488ac"
	nameNewWIF    = "cQjJfmREwK9VfQj6DF6vkcMW5jeo8Mh88B8sgXQgKbw6dLUDcj6i"

	// name_firstupdate 输出，锁定到 cPaKrh... 的公钥哈希
	firstUpdateScript = "520a4141414141414141414114931def0cd079febdebda7779ab7c9b4e6adddfe00a424242424242424242426d6d76a91434233eeb4966ce27021b274a618239b95bd35fc488ac"
	firstUpdateWIF    = "cPaKrh32pk3eWSAhj7nLePZt9NSrfME7Xia1Ne6doSgYxWhxP9cb"

	// P2PKH 输出，锁定到 cP69o8... 的公钥哈希
	p2pkhScript = "76a914ef519d95ad3804f303e34c084c6e2cf95d6714fd88ac"
	p2pkhWIF    = "cP69o89cc1M25ihJbY1kN5mfvkkFA99sErEbpfyXbktoY75peLPL"

	// 非压缩公钥的主网 WIF
	uncompressedWIF = "74pxNKNpByQ2kMow4d9kF6Z77BYeKztQNLq3dSyU4ES1K5KLNiz"
)

func mustWIF(t *testing.T, s string) *btcutil.WIF {
	t.Helper()
	wif, err := btcutil.DecodeWIF(s)
	require.NoError(t, err)
	return wif
}

func newTestWIF(t *testing.T) *btcutil.WIF {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	wif, err := btcutil.NewWIF(priv, &chaincfg.TestNet3Params, true)
	require.NoError(t, err)
	return wif
}

func testOutPoint(t *testing.T, index uint32) wire.OutPoint {
	t.Helper()
	hash, err := chainhash.NewHashFromStr("442c03edcffac09a3ce10a72b74a759158c3ae96fe8d464915990f6425aacaf1")
	require.NoError(t, err)
	return *wire.NewOutPoint(hash, index)
}

// spendingTx 返回一个花费 prevOut 的单输入交易。
func spendingTx(t *testing.T, prevOut wire.OutPoint) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(&prevOut, nil, nil))
	tx.AddTxOut(wire.NewTxOut(50000, mustDecodeHex(t, p2pkhScript)))
	return tx
}

// executeInput 使用 btcd 脚本引擎验证输入的解锁脚本。
func executeInput(t *testing.T, tx *wire.MsgTx, idx int, prev *wire.TxOut) error {
	t.Helper()
	flags := btcscript.ScriptBip16 | btcscript.ScriptVerifyDERSignatures | btcscript.ScriptVerifyStrictEncoding
	fetcher := btcscript.NewCannedPrevOutputFetcher(prev.PkScript, prev.Value)
	vm, err := btcscript.NewEngine(prev.PkScript, tx, idx, flags, nil, nil, prev.Value, fetcher)
	if err != nil {
		return err
	}
	return vm.Execute()
}

// TestNewInputVariant 名称输出选择 NameInput，P2PKH 输出选择 PubKeyHashInput。
func TestNewInputVariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		tmpl   Template
	}{
		{"name_new", nameNewScript, NameNewTy},
		{"name_firstupdate", firstUpdateScript, NameFirstUpdateTy},
		{"name_update", nameScriptVectors[3].raw, NameUpdateTy},
	}

	for i, test := range tests {
		in, err := NewInput(testOutPoint(t, uint32(i)), wire.NewTxOut(NameOperationFee, mustDecodeHex(t, test.script)))
		require.NoError(t, err, test.name)
		nameIn, ok := in.(*NameInput)
		require.True(t, ok, "%s: got %T", test.name, in)
		require.Equal(t, test.tmpl, nameIn.Template())
		require.Equal(t, nameIn.NameScript().PubKeyHash(), nameIn.pubKeyHash())
	}

	in, err := NewInput(testOutPoint(t, 9), wire.NewTxOut(1000, mustDecodeHex(t, p2pkhScript)))
	require.NoError(t, err)
	require.IsType(t, &PubKeyHashInput{}, in)

	_, err = NewInput(testOutPoint(t, 10), wire.NewTxOut(0, mustDecodeHex(t, "6a0568656c6c6f")))
	require.ErrorIs(t, err, ErrUnsupportedScript)

	_, err = NewNameInput(testOutPoint(t, 11), wire.NewTxOut(1000, mustDecodeHex(t, p2pkhScript)))
	require.ErrorIs(t, err, ErrNotANameScript)
}

// TestInputSign 测试每种模板：匹配的密钥产生一份签名，不匹配的密钥不产生签名。
func TestInputSign(t *testing.T) {
	t.Parallel()

	updateKey := newTestWIF(t)
	updateOut, err := DefaultOutputBuilder.NameUpdate("d/test", "value", Hash160(updateKey.SerializePubKey()))
	require.NoError(t, err)

	uncompressed := mustWIF(t, uncompressedWIF)
	uncompressedOut, err := DefaultOutputBuilder.NameUpdate("d/test", "value", Hash160(uncompressed.SerializePubKey()))
	require.NoError(t, err)

	tests := []struct {
		name   string
		output *wire.TxOut
		key    *btcutil.WIF
	}{
		{"name_new", wire.NewTxOut(NameOperationFee, mustDecodeHex(t, nameNewScript)), mustWIF(t, nameNewWIF)},
		{"name_firstupdate", wire.NewTxOut(NameOperationFee, mustDecodeHex(t, firstUpdateScript)), mustWIF(t, firstUpdateWIF)},
		{"name_update", updateOut, updateKey},
		{"name_update uncompressed key", uncompressedOut, uncompressed},
		{"p2pkh", wire.NewTxOut(4000000000, mustDecodeHex(t, p2pkhScript)), mustWIF(t, p2pkhWIF)},
	}

	other := newTestWIF(t)
	for i, test := range tests {
		in, err := NewInput(testOutPoint(t, uint32(i)), test.output)
		require.NoError(t, err, test.name)
		tx := spendingTx(t, in.PreviousOutPoint())

		// 不匹配的密钥不是错误
		sigs, err := in.Sign(tx, 0, other, btcscript.SigHashAll)
		require.NoError(t, err, test.name)
		require.Empty(t, sigs, test.name)

		sigs, err = in.Sign(tx, 0, test.key, btcscript.SigHashAll)
		require.NoError(t, err, test.name)
		require.Len(t, sigs, 1, test.name)
		require.False(t, in.IsFullySigned(), test.name)

		require.NoError(t, in.AddSignature(tx, sigs[0]), test.name)
		require.True(t, in.IsFullySigned(), test.name)
		require.Equal(t, ScriptMaxSize+41, in.EstimateSize())

		tx.TxIn[0].SignatureScript = in.SignatureScript()
		if err := executeInput(t, tx, 0, test.output); err != nil {
			t.Fatalf("%s: script execution failed: %v", test.name, err)
		}

		in.ClearSignatures()
		require.False(t, in.IsFullySigned(), test.name)
		require.Empty(t, in.SignatureScript(), test.name)
	}
}

// TestAddSignatureInvalid 测试 AddSignature 拒绝无效签名。
func TestAddSignatureInvalid(t *testing.T) {
	t.Parallel()

	output := wire.NewTxOut(NameOperationFee, mustDecodeHex(t, nameNewScript))
	in, err := NewNameInput(testOutPoint(t, 0), output)
	require.NoError(t, err)

	tx := spendingTx(t, in.PreviousOutPoint())
	sigs, err := in.Sign(tx, 0, mustWIF(t, nameNewWIF), btcscript.SigHashAll)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	valid := sigs[0]

	otherPub := newTestWIF(t).SerializePubKey()
	badDER := append([]byte(nil), valid.Signature...)
	badDER[len(badDER)-1] ^= 0x01

	tests := []struct {
		name string
		sig  *TransactionSignature
		tx   *wire.MsgTx
	}{
		{"nil signature", nil, tx},
		{"wrong public key", &TransactionSignature{PrevOut: valid.PrevOut, PubKey: otherPub, Signature: valid.Signature, HashType: valid.HashType}, tx},
		{"corrupted signature", &TransactionSignature{PrevOut: valid.PrevOut, PubKey: valid.PubKey, Signature: badDER, HashType: valid.HashType}, tx},
		{"input index out of range", &TransactionSignature{PrevOut: valid.PrevOut, InputIndex: 3, PubKey: valid.PubKey, Signature: valid.Signature, HashType: valid.HashType}, tx},
		{"wrong outpoint", &TransactionSignature{PrevOut: testOutPoint(t, 7), PubKey: valid.PubKey, Signature: valid.Signature, HashType: valid.HashType}, tx},
		{"transaction changed after signing", valid, func() *wire.MsgTx {
			changed := tx.Copy()
			changed.TxOut[0].Value--
			return changed
		}()},
	}

	for _, test := range tests {
		err := in.AddSignature(test.tx, test.sig)
		if !IsErrorCode(err, ErrInvalidSignature) {
			t.Errorf("%s: got %v, want ErrInvalidSignature", test.name, err)
		}
		require.False(t, in.IsFullySigned(), test.name)
	}

	require.NoError(t, in.AddSignature(tx, valid))
	require.True(t, in.IsFullySigned())
}

// TestIsPubKeyHashSigScript 测试解锁脚本模式判断。
func TestIsPubKeyHashSigScript(t *testing.T) {
	t.Parallel()

	sig := make([]byte, 71)
	pub := make([]byte, 33)

	good, err := btcscript.NewScriptBuilder().AddData(sig).AddData(pub).Script()
	require.NoError(t, err)
	require.True(t, IsPubKeyHashSigScript(good))

	onlySig, err := btcscript.NewScriptBuilder().AddData(sig).Script()
	require.NoError(t, err)
	require.False(t, IsPubKeyHashSigScript(onlySig))

	badPub, err := btcscript.NewScriptBuilder().AddData(sig).AddData(pub[:20]).Script()
	require.NoError(t, err)
	require.False(t, IsPubKeyHashSigScript(badPub))

	withOp, err := btcscript.NewScriptBuilder().AddOp(btcscript.OP_DUP).AddData(pub).Script()
	require.NoError(t, err)
	require.False(t, IsPubKeyHashSigScript(withOp))

	require.False(t, IsPubKeyHashSigScript(nil))
}
