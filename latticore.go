/*
Package latticore is a pure Go implementation of the polynomial ring arithmetic underlying lattice-based
Homomorphic Encryption schemes. It provides Montgomery-form modular vectors, number-theoretic transforms,
power-of-two cyclotomic polynomials over RNS moduli, and discrete Gaussian samplers.
*/
package latticore
