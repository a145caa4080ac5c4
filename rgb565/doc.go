// Package rgb565 provides the 16-bit RGB565 pixel format used by ST7735S panels.
//
// Each pixel is 5 bits of red, 6 bits of green and 5 bits of blue packed into a
// 16-bit word that the controller expects high byte first:
//
//	bit   15      11 10        5 4       0
//	      R R R R R  G G G G G G  B B B B B
//	byte  [        0        ][        1        ]
//
// Image stores its pixels in that wire order, so Image.Pix can be passed to
// st7735s.Dev.WritePixels without conversion once the window and color mode
// match the image bounds:
//
//	img := rgb565.NewImage(image.Rect(0, 0, 16, 8))
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xFF, A: 0xFF}), image.Point{}, draw.Src)
//	w, _ := st7735s.WindowFromRect(img.Bounds())
//	dev.Draw(w, img.Pix)
package rgb565
