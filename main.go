/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tudao164/KiemThuPhanMem/cmd"

func main() {
	cmd.Execute()
}
