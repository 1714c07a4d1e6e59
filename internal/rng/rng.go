// Package rng содержит инжектируемый источник случайных чисел.
// Все стохастические операторы алгоритма используют один общий поток,
// поэтому порядок обращений к источнику фиксирован и воспроизводим
// при одинаковом сиде.
package rng

import "math/rand"

// Source — обёртка над math/rand с фиксированным порядком выборок.
type Source struct {
	r *rand.Rand
}

// New возвращает источник, инициализированный указанным сидом.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Seed переинициализирует поток.
func (s *Source) Seed(seed int64) {
	s.r.Seed(seed)
}

// Int возвращает случайное целое в диапазоне [min, max] включительно.
func (s *Source) Int(min, max int) int {
	if min > max {
		panic("rng: min > max")
	}
	return min + s.r.Intn(max-min+1)
}

// Float64 возвращает случайное число в диапазоне [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Bool возвращает true с вероятностью p.
// Выборка из потока делается всегда, независимо от значения p.
func (s *Source) Bool(p float64) bool {
	return s.r.Float64() < p
}

// Shuffle выполняет случайную перестановку элементов (Фишер-Йейтс).
func (s *Source) Shuffle(p []int) {
	for i := len(p) - 1; i > 0; i-- {
		j := s.r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
}

// Perm возвращает случайную перестановку чисел [0, n).
func (s *Source) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	s.Shuffle(p)
	return p
}

// Sample возвращает k различных индексов из диапазона [0, n).
// Реализована через полную перестановку: порядок выборок не зависит от k.
func (s *Source) Sample(n, k int) []int {
	if k > n {
		panic("rng: sample size larger than population")
	}
	p := s.Perm(n)
	return p[:k]
}
