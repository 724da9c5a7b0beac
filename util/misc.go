package util

import (
	"bufio"
	"fmt"
	"io"
)

func CopyFloatSlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

func CopyIntSlice(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// WaitForEnter blocks until a line is read from in
func WaitForEnter(in io.Reader, out io.Writer, prompt string) error {
	fmt.Fprint(out, prompt)
	_, err := bufio.NewReader(in).ReadString('\n')
	if err == io.EOF {
		return nil
	}
	return err
}
