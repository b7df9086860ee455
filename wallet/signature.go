package wallet

import (
	"errors"
	"fmt"
)

const (
	PaddedSignatureLength      = 73
	MarkerByte            byte = 0xff
	ZeroByte              byte = 0x00
)

// DER encoded secp256k1 signatures are at most 72 bytes long and vary with r
// and s. Receipts carry fixed length signatures, so a DER signature is
// followed by one MarkerByte and as many ZeroBytes as needed to reach
// PaddedSignatureLength.
//
//	<70 byte DER> | MarkerByte | ZeroByte | ZeroByte
//	<72 byte DER> | MarkerByte

// PadDEREncodedSignature pads sig to PaddedSignatureLength bytes.
func PadDEREncodedSignature(sig []byte) ([]byte, error) {
	if len(sig) >= PaddedSignatureLength {
		return nil, fmt.Errorf("signature too long: want at most %d bytes, got %d", PaddedSignatureLength-1, len(sig))
	}
	padded := make([]byte, PaddedSignatureLength)
	copy(padded, sig)
	padded[len(sig)] = MarkerByte
	return padded, nil
}

// RemovePadding returns the DER part of a padded signature. The returned slice
// aliases sig.
func RemovePadding(sig []byte) ([]byte, error) {
	if len(sig) != PaddedSignatureLength {
		return nil, fmt.Errorf("signature of wrong length: want %d bytes, got %d", PaddedSignatureLength, len(sig))
	}
	for i := len(sig) - 1; i >= 0; i-- {
		switch sig[i] {
		case MarkerByte:
			return sig[:i], nil
		case ZeroByte:
		default:
			return nil, errors.New("invalid padding")
		}
	}
	return nil, errors.New("invalid padding: missing marker")
}
