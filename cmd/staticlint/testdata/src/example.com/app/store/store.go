package store

func Replicate(fn func()) {
	go fn() // want "untracked go statement"
}
