package queue

// Kind классифицирует ошибки движка для маппинга на HTTP-статусы.
type Kind int

const (
	KindValidation Kind = iota // некорректный ввод, повтор бессмысленен
	KindConflict               // конфликт состояния, можно повторить позже
	KindNotFound               // сущность не найдена
)

// Err — ошибка движка очереди с кодом для программной обработки клиентом.
type Err struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Err) Error() string {
	return e.Message
}

func validation(code, message string) *Err {
	return &Err{Kind: KindValidation, Code: code, Message: message}
}

func conflict(code, message string) *Err {
	return &Err{Kind: KindConflict, Code: code, Message: message}
}

func notFound(code, message string) *Err {
	return &Err{Kind: KindNotFound, Code: code, Message: message}
}
