package repo

// LogRepo is the append-only diagnostic log.
// Every method is best-effort: I/O failures are swallowed.
type LogRepo interface {
	Append(line string)
	Read() string
	Clear()
}
