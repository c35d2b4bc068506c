package service

import "math/big"

// Basis point denominator for fee computation.
const bpsDenominator = 10000

// safeMul returns a*b, reporting false if the product does not fit in
// an int64. Share counts and prices are validated non-negative before
// this is called.
func safeMul(a, b int64) (int64, bool) {
	product := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	if !product.IsInt64() {
		return 0, false
	}
	return product.Int64(), true
}

// mulDiv computes a*b/c with an arbitrary-precision intermediate, so
// pro-rata payouts and cost-basis splits cannot overflow even when a*b
// exceeds 64 bits. Integer division truncates toward zero.
func mulDiv(a, b, c int64) int64 {
	if c == 0 {
		return 0
	}
	result := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	result.Quo(result, big.NewInt(c))
	return result.Int64()
}

// feeFor computes the platform fee for a cost at the given rate in
// basis points.
func feeFor(cost, feeBps int64) int64 {
	return mulDiv(cost, feeBps, bpsDenominator)
}
