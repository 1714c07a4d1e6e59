package hhoa

import "errors"

var (
	// ErrConfiguration — некорректные параметры алгоритма или аргументы операторов.
	ErrConfiguration = errors.New("некорректная конфигурация")

	// ErrState — обращение к результатам до инициализации или пустая популяция.
	ErrState = errors.New("некорректное состояние")
)
