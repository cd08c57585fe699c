package metadata

import (
	"fmt"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// flashDescriptions maps the EXIF Flash tag bit patterns to readable text.
var flashDescriptions = map[uint16]string{
	0x00: "No Flash",
	0x01: "Fired",
	0x05: "Fired, Return not detected",
	0x07: "Fired, Return detected",
	0x08: "On, Did not fire",
	0x09: "On, Fired",
	0x0d: "On, Return not detected",
	0x0f: "On, Return detected",
	0x10: "Off, Did not fire",
	0x14: "Off, Did not fire, Return not detected",
	0x18: "Auto, Did not fire",
	0x19: "Auto, Fired",
	0x1d: "Auto, Fired, Return not detected",
	0x1f: "Auto, Fired, Return detected",
	0x20: "No flash function",
	0x30: "Off, No flash function",
	0x41: "Fired, Red-eye reduction",
	0x45: "Fired, Red-eye reduction, Return not detected",
	0x47: "Fired, Red-eye reduction, Return detected",
	0x49: "On, Red-eye reduction",
	0x4d: "On, Red-eye reduction, Return not detected",
	0x4f: "On, Red-eye reduction, Return detected",
	0x50: "Off, Red-eye reduction",
	0x58: "Auto, Did not fire, Red-eye reduction",
	0x59: "Auto, Fired, Red-eye reduction",
	0x5d: "Auto, Fired, Red-eye reduction, Return not detected",
	0x5f: "Auto, Fired, Red-eye reduction, Return detected",
}

// FlashDescription renders an EXIF flash code as text.
func FlashDescription(code uint16) string {
	if s, ok := flashDescriptions[code]; ok {
		return s
	}
	return "Unknown flash code"
}

// deriveCameraInfo builds the camera summary from the raw tags. Every field
// degrades gracefully: an absent or odd tag leaves the field empty rather
// than failing the load.
func deriveCameraInfo(store tagStore) types.CameraInfo {
	var info types.CameraInfo

	info.Camera = deriveCameraName(store)

	// Direct exposure time first, then the APEX shutter speed.
	if v, ok := store.GetURational("ExposureTime"); ok {
		info.Exposure = FormatURational(v.Numerator, v.Denominator)
	} else if v, ok := store.GetSRational("ShutterSpeedValue"); ok && v.Denominator != 0 {
		apex := float64(v.Numerator) / float64(v.Denominator)
		info.Exposure = FormatExposureSeconds(ApexShutterToSeconds(apex))
	}

	if v, ok := store.GetSRational("ExposureBiasValue"); ok {
		if v.Numerator == 0 {
			info.ExposureBias = "0"
		} else {
			info.ExposureBias = fmt.Sprintf("%d/%d", v.Numerator, v.Denominator)
		}
	}

	// Direct f-number first, then the APEX aperture.
	if v, ok := store.GetURational("FNumber"); ok && v.Denominator != 0 {
		info.Aperture = FormatFNumber(float64(v.Numerator) / float64(v.Denominator))
	} else if v, ok := store.GetURational("ApertureValue"); ok && v.Denominator != 0 {
		apex := float64(v.Numerator) / float64(v.Denominator)
		info.Aperture = FormatFNumber(ApexApertureToFNumber(apex))
	}

	info.ISO, _ = store.GetUint16("ISOSpeedRatings")

	if v, ok := store.GetURational("FocalLength"); ok && v.Denominator != 0 {
		info.Focal = float64(v.Numerator) / float64(v.Denominator)
	}

	if code, ok := store.GetUint16("Flash"); ok {
		info.Flash = FlashDescription(code)
	}

	return info
}

// deriveCameraName joins Make and Model, then appends Software in
// parentheses. Any subset of the three tags yields a usable name.
func deriveCameraName(store tagStore) string {
	make, makeOK := store.GetString("Make")
	model, modelOK := store.GetString("Model")
	software, softwareOK := store.GetString("Software")

	var camera string
	switch {
	case makeOK && modelOK:
		camera = make + " " + model
	case makeOK:
		camera = make
	case modelOK:
		camera = model
	}

	if camera != "" && softwareOK {
		camera += " (" + software + ")"
	}
	return camera
}
