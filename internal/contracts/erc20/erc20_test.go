package erc20

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackTransferLayout(t *testing.T) {
	to := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	data, err := PackTransfer(to, big.NewInt(1500000))
	require.NoError(t, err)
	require.Len(t, data, 4+32+32)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(data[:4]))

	gotTo, gotValue, err := UnpackTransfer(data)
	require.NoError(t, err)
	assert.Equal(t, to, gotTo)
	assert.Equal(t, int64(1500000), gotValue.Int64())
}

func TestUnpackTransferRejectsOtherCalls(t *testing.T) {
	parsed, err := ParsedABI()
	require.NoError(t, err)
	data, err := parsed.Pack("decimals")
	require.NoError(t, err)

	_, _, err = UnpackTransfer(data)
	assert.Error(t, err)
}
