package wire

import (
	"encoding/hex"
	"testing"
)

// Ulord blocks captured from the live networks.
const (
	// mainnetHeader12978Hex is the header of mainnet block 12978.
	mainnetHeader12978Hex = "00000020050fbd12443f15673ed34818fd907283a9daa9c75d8b5f65894c543240" +
		"0100006cae35ec3ca92e365af79f71777609b5ac4b4d71d7eeb8f76979288327b5" +
		"9b250000000000000000000000000000000000000000000000000000000000000000" +
		"9047f55a7579011e45eaf22dc74bbe0a362808cb6ee378cdf280978b2fca8f638231" +
		"7a9f9767a6e2"

	// testnetBlock1001Hex is testnet block 1001, carrying only a coinbase.
	testnetBlock1001Hex = "000000202d41b7147b772270d51478689401a8dfb6f200995b4f581082719e58" +
		"3003000039a9f34dc2d754d4f9362925d2fcb183fbd99ba1b3e164f663b7479a4a19" +
		"29e900000000000000000000000000000000000000000000000000000000000000" +
		"00c5dad95a17a4071e9b0000205f7d538980edbf9e181439c21a559b2653268c47" +
		"67c7fac6be8172bd01010000000100000000000000000000000000000000000000" +
		"00000000000000000000000000ffffffff2202e90304c5dad95a192f746573746e" +
		"65742d706f6f6c322e756c6f72642e6f6e652f000000000250b6989a0200000019" +
		"76a9141098a6ed76a601874aac92b38207621be56f8e7088ac70b9bb0600000000" +
		"1976a914788541a7f20b86328ceb935e9a284a35ef58259788ac00000000"

	// testnetBlock11215Hex is testnet block 11215, a coinbase and one
	// spend.
	testnetBlock11215Hex = "00000020035e1f326d6666a05051104cc554aed79870d21af3423014edfaf416" +
		"e8010000eb7458144e4a8e02cba446c61118adbe78173f543974fa3e79eeb82db5" +
		"a4f9a60000000000000000000000000000000000000000000000000000000000000000" +
		"7a43f15ac6b4021ef9170080feca044a3b35c04026cb9eceb824ab3af3d1738650" +
		"c750585c77d5570201000000010000000000000000000000000000000000000000" +
		"000000000000000000000000ffffffff2102cf2b047a43f15a182f746573746e65" +
		"742d706f6f6c2e756c6f72642e6f6e652f0000000002c01cee9b020000001976a9" +
		"14ee66199f1a7de9397ac19c465240aa2e7f7d7a5488ac402cbf06000000001976" +
		"a914788541a7f20b86328ceb935e9a284a35ef58259788ac000000000100000001" +
		"4b333cafff4f05e5c394495434091439ee402443fecfaff26047027fd8a9926e01" +
		"0000006b483045022100a30f1813593f0c9237d75fec9a254b6e6cba0a5b130428" +
		"31f3aa749d81ff2f0f02205a1c32c5fa16e9039fdec081fbc606e7343cacee29d7" +
		"84f80cf9233c8061f8f201210387019a798cafd1210c3288b3c2ef67d0579b513e" +
		"0baf5fe2b253c03cd41cbf91ffffffff0200c2eb0b000000001976a914c0e17e7f" +
		"a243b68035cb44ecf3afd3a28fdc6d6988acc0a95029170000001976a914943f17" +
		"b48d37f1da48e9850510ba96aa699260fd88ac00000000"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString: %s", err)
	}
	return b
}
