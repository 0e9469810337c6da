package capture

import (
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// ImageToMat converts a Go image to a BGR gocv.Mat, one stripe of rows per CPU.
func ImageToMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	forEachStripe(height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				mat.SetUCharAt(y, x*3+0, uint8(b>>8))
				mat.SetUCharAt(y, x*3+1, uint8(g>>8))
				mat.SetUCharAt(y, x*3+2, uint8(r>>8))
			}
		}
	})

	return mat
}

func forEachStripe(rows int, fn func(yStart, yEnd int)) {
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (rows + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		if startY >= rows {
			break
		}
		endY := startY + rowsPerWorker
		if endY > rows {
			endY = rows
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}
