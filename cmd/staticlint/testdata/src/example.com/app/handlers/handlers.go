package handlers

func Background(fn func()) {
	go fn()
}
