package assert

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

func NotEmpty[T any](values []T) {
	if len(values) == 0 {
		panic("expected slice to be non-empty")
	}
}
