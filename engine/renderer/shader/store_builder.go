package shader

// StoreBuilderOption is a functional option applied to a store during construction via NewStore.
type StoreBuilderOption func(*store)

// WithStoreValidator sets the Validator given to every shader the store creates.
//
// Parameters:
//   - v: the validator, e.g. NagaValidator
//
// Returns:
//   - StoreBuilderOption: a function that applies the validator option to a store
func WithStoreValidator(v Validator) StoreBuilderOption {
	return func(s *store) {
		s.validate = v
	}
}

// WithWorkers sets the number of workers LoadDir reads files with. Defaults to 4.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - StoreBuilderOption: a function that applies the worker option to a store
func WithWorkers(n int) StoreBuilderOption {
	return func(s *store) {
		if n > 0 {
			s.workers = n
		}
	}
}
