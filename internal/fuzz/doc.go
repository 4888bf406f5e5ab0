// Package fuzztests houses Go fuzz harnesses for the rule pipeline
// (source -> lexer -> parser -> compiler -> scanner). They check that
// arbitrary input never panics or hangs.
//
// Назначение: прогонять произвольные байты через лексер, парсер и
// компилятор, а скомпилированное сканировать на тех же байтах.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.

package fuzztests
