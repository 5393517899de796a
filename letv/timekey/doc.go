/*
Package timekey derives the tkey parameter that authenticates playJson
API calls.

The key schedule was recovered from the site's Flash player. It rotates
the current Unix time right by (K mod 13) bits, XORs it with the fixed
constant K = 773625421 and rotates the result right by (K mod 17) bits.
All arithmetic is on unsigned 32-bit values:

	tkey := timekey.DeriveToken(time.Now().Unix())

The token is a pure function of its input; there is no state to share
and every function in this package is safe for concurrent use.

# Rotation

Rotate reproduces the player's loop of single-bit rotations. Because a
32-bit rotation is a group action of order 32, the loop is equivalent to
one rotation by n mod 32; Rotate normalises n first, so negative counts
rotate by their non-negative residue.

Timestamps outside the 32-bit range are reduced modulo 2^32 before
rotating. For negative values this matches the player's "add 0x100000000
and shift" convention for every input in [-2^32, 0).

# Script keyers

When the site changes its schedule before this package is updated, a
JavaScript calcTimeKey(ts) function can be run instead, on goja
(GojaKeyer) or otto (ScriptKeyer). ReferenceScript is the current
schedule in that form. Both build a fresh interpreter per call, so wrap
them in Memo when many requests are signed in the same second:

	k, err := timekey.NewGojaKeyer(src)
	tkey, err := timekey.Memo(k).Key(ts)
*/
package timekey
