// Package catalog 持有一次会话内加载的全部电影记录，并提供三个只读报表。
//
// Catalog 只在加载阶段写入；加载完成后对外只读，不需要加锁。
package catalog

import (
	"iter"
	"slices"

	"github.com/John-Robertt/moviecat/internal/domain"
)

// Catalog 是按输入顺序排列的电影记录集合。
type Catalog struct {
	movies []domain.Movie
}

// New 用给定记录构造 Catalog（复制一份，调用方后续修改不影响 Catalog）。
func New(movies ...domain.Movie) *Catalog {
	c := &Catalog{movies: make([]domain.Movie, 0, len(movies))}
	for _, m := range movies {
		c.add(m)
	}
	return c
}

func (c *Catalog) add(m domain.Movie) {
	m.Languages = slices.Clone(m.Languages)
	c.movies = append(c.movies, m)
}

// Len 返回记录数。
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.movies)
}

// All 按输入顺序遍历记录。产出的是副本，不暴露内部存储。
func (c *Catalog) All() iter.Seq[domain.Movie] {
	return func(yield func(domain.Movie) bool) {
		if c == nil {
			return
		}
		for _, m := range c.movies {
			m.Languages = slices.Clone(m.Languages)
			if !yield(m) {
				return
			}
		}
	}
}
