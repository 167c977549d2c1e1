package repository

import "errors"

// ErrNotFound — целевая сущность отсутствует. Первичные операции (отправка
// сообщения) возвращают её вызывающему; вторичные (отметка прочитанного)
// трактуют отсутствие как no-op.
var ErrNotFound = errors.New("not found")
