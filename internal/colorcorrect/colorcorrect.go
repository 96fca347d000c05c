// Package colorcorrect applies per-image corrections read from an optional
// sidecar file next to the photo. A missing sidecar means identity; a
// malformed one is logged and ignored. The kiosk must keep running no matter
// what is in these files.
package colorcorrect

import (
	"bufio"
	"image"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// FileSuffix is appended to the image path to form the sidecar path.
const FileSuffix = ".corrections.txt"

// Correct applies the corrections from the sidecar of srcPath, line by line.
// Each line is "op value" or "op value1 value2"; unknown ops are skipped.
func Correct(img image.Image, srcPath string) image.Image {
	f, err := os.Open(srcPath + FileSuffix)
	if err != nil {
		return img
	}
	defer f.Close()

	out := imaging.Clone(img)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		v1, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			logrus.Warnf("bad correction line %q for %s: %v", scanner.Text(), srcPath, err)
			continue
		}
		var v2 float64
		if len(parts) >= 3 {
			v2, err = strconv.ParseFloat(parts[2], 64)
			if err != nil {
				logrus.Warnf("bad correction line %q for %s: %v", scanner.Text(), srcPath, err)
				continue
			}
		}

		switch parts[0] {
		case "gamma":
			out = imaging.AdjustGamma(out, v1)
		case "vibrance":
			out = adjustVibrance(out, v1)
		case "blackpoint":
			out = adjustLevels(out, v1, 255)
		case "whitepoint":
			out = adjustLevels(out, 0, v1)
		case "brightness":
			out = adjustBrightnessContrast(out, v1, 0)
		case "contrast":
			out = adjustBrightnessContrast(out, 0, v1)
		case "blackpoint_whitepoint":
			if len(parts) >= 3 {
				out = adjustLevels(out, v1, v2)
			}
		case "brightness_contrast":
			if len(parts) >= 3 {
				out = adjustBrightnessContrast(out, v1, v2)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logrus.Warnf("error reading corrections for %s: %v", srcPath, err)
	}
	return out
}

// EditorCommand returns the command that opens the sidecar of path in the
// configured text editor. Started fire-and-forget by edit mode.
func EditorCommand(editor, path string) *exec.Cmd {
	return exec.Command(editor, path+FileSuffix)
}

// adjustVibrance boosts (x > 1) or mutes (x < 1) saturation on a gamma
// curve, approximated through imaging's linear saturation adjustment.
func adjustVibrance(img *image.NRGBA, x float64) *image.NRGBA {
	if x <= 0 {
		return img
	}
	// The midpoint of the gamma curve s^(1/x) maps 0.5 to 0.5^(1/x);
	// express that lift as a linear percentage.
	mid := math.Pow(0.5, 1.0/x)
	percentage := (mid - 0.5) * 200
	if percentage > 100 {
		percentage = 100
	}
	if percentage < -100 {
		percentage = -100
	}
	return imaging.AdjustSaturation(img, percentage)
}

// adjustLevels remaps channel values so bp reads as black and wp as white.
func adjustLevels(img *image.NRGBA, bp, wp float64) *image.NRGBA {
	span := wp - bp
	if span <= 0 {
		return img
	}
	m := 255.0 / span
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := math.Round((float64(i) - bp) * m)
		lut[i] = clamp255(v)
	}
	return applyLUT(img, &lut)
}

// adjustBrightnessContrast mirrors the OpenCV addWeighted formulation used
// by the sidecar files in the field: brightness and contrast both range
// -127..127.
func adjustBrightnessContrast(img *image.NRGBA, brightness, contrast float64) *image.NRGBA {
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := float64(i)
		if brightness != 0 {
			var shadow, highlight float64
			if brightness > 0 {
				shadow = brightness
				highlight = 255
			} else {
				shadow = 0
				highlight = 255 + brightness
			}
			v = v*(highlight-shadow)/255 + shadow
		}
		if contrast != 0 {
			f := 131 * (contrast + 127) / (127 * (131 - contrast))
			v = v*f + 127*(1-f)
		}
		lut[i] = clamp255(math.Round(v))
	}
	return applyLUT(img, &lut)
}

func applyLUT(img *image.NRGBA, lut *[256]uint8) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = lut[out.Pix[i]]
		out.Pix[i+1] = lut[out.Pix[i+1]]
		out.Pix[i+2] = lut[out.Pix[i+2]]
	}
	return out
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
