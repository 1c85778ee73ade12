package tools

const maxOutputBytes = 10_000

// truncate caps tool output fed back into the model context.
func truncate(b []byte) string {
	if len(b) > maxOutputBytes {
		return string(b[:maxOutputBytes]) + "\n... (truncated)"
	}
	return string(b)
}
