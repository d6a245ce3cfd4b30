// Package receive renders the receive-address QR code shown by the popup.
package receive

import (
	"encoding/base64"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	minSize = 64
	maxSize = 1024
)

// AddressQR encodes an EIP-681 style "ethereum:<address>" URI as a PNG and
// returns it as a data URL.
func AddressQR(addr common.Address, size int) (string, error) {
	if size == 0 {
		size = constants.DefaultQRSize
	}
	if size < minSize || size > maxSize {
		return "", errors.Newf("qr size must be between %d and %d", minSize, maxSize)
	}

	png, err := qrcode.Encode("ethereum:"+addr.Hex(), qrcode.Medium, size)
	if err != nil {
		return "", errors.Wrap(err, "encode qr")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
