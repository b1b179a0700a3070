package service

// CounterSetting - имя настройки, в которой хранится верхняя граница выданного пространства кодов.
const CounterSetting = "current_max"

// Mapping связывает короткий код с исходной строкой.
type Mapping struct {
	Code   string `json:"code"`
	Target string `json:"target"`
}

// Setting - именованное целое значение.
type Setting struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// SyncResult - сколько записей каждого отношения перенесено при полной синхронизации.
type SyncResult struct {
	Mappings int
	Settings int
}
