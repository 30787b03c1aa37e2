package main

import (
	"oss.terrastruct.com/texmath/lib/xmain"
	"oss.terrastruct.com/texmath/tmcli"
)

func main() {
	xmain.Main(tmcli.Run)
}
