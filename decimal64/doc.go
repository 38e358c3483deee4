// Package decimal64 packs decimal values into the 64-bit IEEE 754-2008
// decimal64 layout used on the wire, with a binary integer coefficient
// (no densely packed decimal).
//
//	 63   62..58        exponent (10)   coefficient
//	┌────┬─────────────┬───────────────┬──────────────────────┐
//	│sign│ combination │ biased exp    │ 53 bits (normal)     │
//	└────┴─────────────┴───────────────┴──────────────────────┘
//	      11 + exp(10) + 51 bits, implicit 0b100 prefix (compact)
//	      11110 = ±Infinity, 11111 = NaN
//
// The exponent is stored biased by -MinExponent. Coefficients range over
// 0..MaxCoefficient (sixteen nines). Values that do not fit are never an
// error: a coefficient wider than sixteen digits or an exponent too large
// becomes a signed infinity. Below MinExponent the coefficient is rounded half
// to even at MinExponent, and one that rounds away becomes a signed zero.
//
// The all-zero bit pattern decodes to zero.
package decimal64
