/*
Package charkov provides a character-level Markov chain for generating
invented words that look like the words of a training wordlist.

Training and generation are separate phases. A Counter accumulates
character-transition frequencies from training words, Compile turns it into
an immutable Chain backed by alias-method samplers, and the Chain produces
new words under length and novelty constraints. A Chain can be encoded to a
compact, checksummed binary form and decoded back.

All randomness is injected through the Rand interface, which is satisfied by
*rand.Rand from math/rand/v2.
*/
package charkov
