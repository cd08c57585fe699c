package metadata

import (
	"fmt"
	"testing"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/exifcodec"
)

// fakeStore is an in-memory tagStore for tests that exercise the aggregate
// without touching real image containers.
type fakeStore struct {
	strings map[string]string
	u16s    map[string]uint16
	u32s    map[string]uint32
	urats   map[string]exifcodec.URational
	srats   map[string]exifcodec.SRational

	setErr   error
	writeErr error
	writes   int
	staged   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		strings: map[string]string{},
		u16s:    map[string]uint16{},
		u32s:    map[string]uint32{},
		urats:   map[string]exifcodec.URational{},
		srats:   map[string]exifcodec.SRational{},
	}
}

func (f *fakeStore) TagCount() int {
	return len(f.strings) + len(f.u16s) + len(f.u32s) + len(f.urats) + len(f.srats)
}

func (f *fakeStore) GetString(name string) (string, bool) {
	v, ok := f.strings[name]
	return v, ok
}

func (f *fakeStore) GetUint16(name string) (uint16, bool) {
	v, ok := f.u16s[name]
	return v, ok
}

func (f *fakeStore) GetUint32(name string) (uint32, bool) {
	v, ok := f.u32s[name]
	return v, ok
}

func (f *fakeStore) GetURational(name string) (exifcodec.URational, bool) {
	v, ok := f.urats[name]
	return v, ok
}

func (f *fakeStore) GetSRational(name string) (exifcodec.SRational, bool) {
	v, ok := f.srats[name]
	return v, ok
}

func (f *fakeStore) SetString(ifdPath, name, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.strings[name] = value
	f.staged = append(f.staged, fmt.Sprintf("%s/%s=%s", ifdPath, name, value))
	return nil
}

func (f *fakeStore) SetUint32(ifdPath, name string, value uint32) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.u32s[name] = value
	f.staged = append(f.staged, fmt.Sprintf("%s/%s=%d", ifdPath, name, value))
	return nil
}

func (f *fakeStore) WriteToFile(path string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	return nil
}

// TestDeriveCameraInfo_AllTags verifies every field of the derived summary.
func TestDeriveCameraInfo_AllTags(t *testing.T) {
	fs := newFakeStore()
	fs.strings["Make"] = "Pablo"
	fs.strings["Model"] = "Picasso"
	fs.strings["Software"] = "1.4"
	fs.urats["ExposureTime"] = exifcodec.URational{Numerator: 1, Denominator: 32}
	fs.srats["ExposureBiasValue"] = exifcodec.SRational{Numerator: 0, Denominator: 3}
	fs.urats["FNumber"] = exifcodec.URational{Numerator: 56, Denominator: 10}
	fs.u16s["ISOSpeedRatings"] = 100
	fs.urats["FocalLength"] = exifcodec.URational{Numerator: 79, Denominator: 10}
	fs.u16s["Flash"] = 0x18

	info := deriveCameraInfo(fs)

	if info.Camera != "Pablo Picasso (1.4)" {
		t.Errorf("unexpected camera: %q", info.Camera)
	}
	if info.Exposure != "1/32" {
		t.Errorf("unexpected exposure: %q", info.Exposure)
	}
	if info.ExposureBias != "0" {
		t.Errorf("unexpected bias: %q", info.ExposureBias)
	}
	if info.Aperture != "5.6" {
		t.Errorf("unexpected aperture: %q", info.Aperture)
	}
	if info.ISO != 100 {
		t.Errorf("unexpected iso: %d", info.ISO)
	}
	if info.Focal != 7.9 {
		t.Errorf("unexpected focal: %v", info.Focal)
	}
	if info.Flash != "Auto, Did not fire" {
		t.Errorf("unexpected flash: %q", info.Flash)
	}
}

// TestDeriveCameraInfo_Empty verifies graceful degradation with no tags.
func TestDeriveCameraInfo_Empty(t *testing.T) {
	info := deriveCameraInfo(newFakeStore())

	if info.Camera != "" || info.Exposure != "" || info.ExposureBias != "" ||
		info.Aperture != "" || info.ISO != 0 || info.Focal != 0 || info.Flash != "" {
		t.Fatalf("expected empty info, got %+v", info)
	}
	if got := info.String(); got != "Unknown camera, Exposure: Undefined, Bias: Undefined, Aperture: Undefined, ISO: Undefined, Focal: Undefined, Flash: Undefined" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}

// TestDeriveCameraName verifies the Make/Model/Software fallback chain.
func TestDeriveCameraName(t *testing.T) {
	cases := []struct {
		make, model, software string
		want                  string
	}{
		{"Pablo", "Picasso", "1.4", "Pablo Picasso (1.4)"},
		{"Pablo", "Picasso", "", "Pablo Picasso"},
		{"Pablo", "", "", "Pablo"},
		{"", "Picasso", "", "Picasso"},
		{"", "Picasso", "2.0", "Picasso (2.0)"},
		{"", "", "2.0", ""},
		{"", "", "", ""},
	}
	for _, c := range cases {
		fs := newFakeStore()
		if c.make != "" {
			fs.strings["Make"] = c.make
		}
		if c.model != "" {
			fs.strings["Model"] = c.model
		}
		if c.software != "" {
			fs.strings["Software"] = c.software
		}
		if got := deriveCameraName(fs); got != c.want {
			t.Errorf("deriveCameraName(%q, %q, %q) = %q, want %q",
				c.make, c.model, c.software, got, c.want)
		}
	}
}

// TestDeriveCameraInfo_ApexFallbacks verifies the APEX paths used when the
// direct tags are absent.
func TestDeriveCameraInfo_ApexFallbacks(t *testing.T) {
	fs := newFakeStore()
	fs.srats["ShutterSpeedValue"] = exifcodec.SRational{Numerator: 5, Denominator: 1}

	info := deriveCameraInfo(fs)
	if info.Exposure != "1/32" {
		t.Errorf("unexpected exposure: %q", info.Exposure)
	}
}

// TestDeriveCameraInfo_ApexAperture verifies the APEX aperture conversion.
func TestDeriveCameraInfo_ApexAperture(t *testing.T) {
	fs := newFakeStore()
	fs.urats["ApertureValue"] = exifcodec.URational{Numerator: 5, Denominator: 1}

	info := deriveCameraInfo(fs)
	if info.Aperture != "5.7" {
		t.Errorf("unexpected aperture: %q", info.Aperture)
	}
}

// TestDeriveCameraInfo_NonzeroBias verifies the bias fraction rendering.
func TestDeriveCameraInfo_NonzeroBias(t *testing.T) {
	fs := newFakeStore()
	fs.srats["ExposureBiasValue"] = exifcodec.SRational{Numerator: -1, Denominator: 3}

	info := deriveCameraInfo(fs)
	if info.ExposureBias != "-1/3" {
		t.Errorf("unexpected bias: %q", info.ExposureBias)
	}
}
