// Package errors provides typed error values for envseal.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Input errors: ErrMissingInput
//   - Key errors: ErrKeyNotResolved (warning only), ErrKeyPairMismatch
//   - Crypto errors: ErrDecryption, ErrEncryption
//   - Document errors: ErrCorruptDocument, ErrUnknownProvider, ErrResolvedDocument
//   - Remote errors: ErrSync, carried by *SyncError with the failing region
//
// # Warnings
//
// Some outcomes degrade a run instead of failing it (for example, no key
// material could be found). These are returned as Warning values, which
// wrap a sentinel so errors.Is still works:
//
//	for _, w := range res.Warnings {
//	    if errors.Is(w, kerrors.ErrKeyNotResolved) {
//	        log.Warnf("%v", w)
//	    }
//	}
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %v", errors.ErrCorruptDocument, err)
package errors
