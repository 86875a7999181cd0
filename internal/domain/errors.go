package domain

import "errors"

// Виды ошибок конвейера. Каждая ошибка этапа оборачивает один из них,
// поэтому вызывающий код различает их через errors.Is.
var (
	ErrFetch     = errors.New("fetch error")
	ErrParse     = errors.New("parse error")
	ErrDateParse = errors.New("date parse error")
	ErrSerialize = errors.New("serialize error")
	ErrWrite     = errors.New("write error")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrDateParse, "date_parse"},
	{ErrFetch, "fetch"},
	{ErrParse, "parse"},
	{ErrSerialize, "serialize"},
	{ErrWrite, "write"},
}

// Kind возвращает короткое имя вида ошибки для логов и вывода оператору.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
