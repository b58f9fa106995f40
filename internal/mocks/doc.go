// Package mocks provides centralized mock implementations for testing.
//
// It holds mocks for the interfaces that cross package boundaries in tests,
// currently the auth and user store surfaces the API handler tests depend
// on. Mocks that only one package's tests need live next to those tests
// instead.
//
// Each mock exposes function fields for the interface methods, falling back
// to simple field-driven defaults when a function is not set:
//
//	jwtService := &mocks.MockJWTService{
//		GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
//			return "mocked-token", nil
//		},
//	}
package mocks
