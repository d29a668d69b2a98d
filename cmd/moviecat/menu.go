package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/John-Robertt/moviecat/internal/catalog"
	"github.com/John-Robertt/moviecat/internal/prompt"
)

const menuText = `
1. Show movies released in the specified year
2. Show highest rated movie for each year
3. Show the title and year of release of all movies in a specific language
4. Exit from the program

Enter a choice from 1 to 4: `

// runMenu 驱动交互菜单，直到用户选择 4 或输入结束（EOF）。
// 菜单与报表的输出文本保持固定格式，便于脚本比对。
func runMenu(in io.Reader, out io.Writer, c *catalog.Catalog) error {
	sc := bufio.NewScanner(in)
	readLine := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	for {
		fmt.Fprint(out, menuText)
		raw, ok := readLine()
		if !ok {
			fmt.Fprintln(out)
			return sc.Err()
		}

		choice, err := prompt.ParseChoice(raw)
		if err != nil {
			fmt.Fprintln(out, "You entered an incorrect choice. Try again.")
			continue
		}

		switch choice {
		case prompt.ChoiceByYear:
			fmt.Fprint(out, "Enter the year for which you want to see movies: ")
			raw, ok := readLine()
			if !ok {
				fmt.Fprintln(out)
				return sc.Err()
			}
			year, err := prompt.ParseYear(raw)
			if err != nil {
				fmt.Fprintln(out, "Invalid input. Please enter a number.")
				continue
			}
			writeByYear(out, c.ByYear(year))

		case prompt.ChoiceBestPerYear:
			writeBestPerYear(out, c.HighestRatedPerYear())

		case prompt.ChoiceByLanguage:
			fmt.Fprint(out, "Enter the language for which you want to see movies: ")
			raw, ok := readLine()
			if !ok {
				fmt.Fprintln(out)
				return sc.Err()
			}
			term, err := prompt.ParseLanguage(raw)
			if err != nil {
				fmt.Fprintln(out, "Invalid input. Please enter a language.")
				continue
			}
			writeByLanguage(out, c.ByLanguage(term))

		case prompt.ChoiceExit:
			return nil
		}
	}
}

func writeByYear(w io.Writer, r catalog.YearReport) {
	if !r.Found() {
		fmt.Fprintf(w, "No data about movies released in the year %d\n", r.Year)
		return
	}
	for _, t := range r.Titles {
		fmt.Fprintln(w, t)
	}
}

func writeBestPerYear(w io.Writer, best []catalog.YearBest) {
	for _, b := range best {
		fmt.Fprintf(w, "%d %.1f %s\n", b.Year, b.Rating, b.Title)
	}
}

func writeByLanguage(w io.Writer, r catalog.LanguageReport) {
	if !r.Found() {
		fmt.Fprintf(w, "No data about movies released in %s\n", r.Term)
		return
	}
	for _, m := range r.Matches {
		fmt.Fprintf(w, "%d %s\n", m.Year, m.Title)
	}
}
