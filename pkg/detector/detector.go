// Package detector provides ground-based interferometer geometry: antenna
// pattern coefficients that project a source's two polarizations onto one
// detector's response, and light-travel time delays between detector sites.
//
// The [Geometry] interface is what the rest of the pipeline depends on;
// [Network] is the built-in implementation covering the LIGO Hanford and
// Livingston, Virgo and KAGRA sites. Its sidereal-time approximation is
// accurate to well under a second of rotation, which is more than enough
// for training-data generation.
package detector

import (
	"fmt"
	"math"
)

// Geometry supplies antenna responses and inter-detector delays.
type Geometry interface {
	// AntennaPattern returns the plus and cross antenna-pattern
	// coefficients of the named detector for a source at (ra, dec)
	// radians with the given polarization angle, at GPS time gps.
	AntennaPattern(det string, ra, dec, pol float64, gps float64) (fplus, fcross float64, err error)

	// TimeDelay returns the wavefront arrival time at det minus the
	// arrival time at ref, in seconds, for a source at (ra, dec) at GPS
	// time gps.
	TimeDelay(det, ref string, ra, dec float64, gps float64) (float64, error)
}

// site holds one detector's Earth-fixed geometry: location in meters and
// the two arm direction unit vectors.
type site struct {
	loc  [3]float64
	xArm [3]float64
	yArm [3]float64
}

// Earth-fixed site data for the standard network.
var sites = map[string]site{
	"H1": {
		loc:  [3]float64{-2.16141492636e6, -3.83469517889e6, 4.60035022664e6},
		xArm: [3]float64{-0.22389266154, 0.79983062746, 0.55690487831},
		yArm: [3]float64{-0.91397818574, 0.02609403989, -0.40492342125},
	},
	"L1": {
		loc:  [3]float64{-7.42760447238e4, -5.49628371971e6, 3.22425701744e6},
		xArm: [3]float64{-0.95457412153, -0.14158077340, -0.26218911324},
		yArm: [3]float64{0.29774156894, -0.48791033647, -0.82054461286},
	},
	"V1": {
		loc:  [3]float64{4.54637409900e6, 8.42989697626e5, 4.37857696241e6},
		xArm: [3]float64{-0.70045821479, 0.20848948619, 0.68256166277},
		yArm: [3]float64{-0.05379255368, -0.96908180549, 0.24080451708},
	},
	"K1": {
		loc:  [3]float64{-3.77733602400e6, 3.48489841100e6, 3.76531369700e6},
		xArm: [3]float64{-0.37590399435, -0.83615850925, 0.39941891926},
		yArm: [3]float64{0.71643780000, 0.01114076000, 0.69756200000},
	},
}

// Network implements Geometry for the built-in sites.
type Network struct{}

// NewNetwork returns the built-in detector network.
func NewNetwork() *Network { return &Network{} }

// Names returns the detector names the network knows about.
func (*Network) Names() []string { return []string{"H1", "K1", "L1", "V1"} }

func lookup(name string) (site, error) {
	s, ok := sites[name]
	if !ok {
		return site{}, fmt.Errorf("detector: unknown detector %q", name)
	}
	return s, nil
}

// response returns the detector response tensor (X⊗X − Y⊗Y)/2.
func (s site) response() [3][3]float64 {
	var d [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d[i][j] = (s.xArm[i]*s.xArm[j] - s.yArm[i]*s.yArm[j]) / 2
		}
	}
	return d
}

// AntennaPattern contracts the response tensor with the wave-frame basis
// vectors built from the source sky position and polarization angle.
func (n *Network) AntennaPattern(det string, ra, dec, pol float64, gps float64) (float64, float64, error) {
	s, err := lookup(det)
	if err != nil {
		return 0, 0, err
	}

	gha := gmst(gps) - ra
	cosgha, singha := math.Cos(gha), math.Sin(gha)
	cosdec, sindec := math.Cos(dec), math.Sin(dec)
	cospsi, sinpsi := math.Cos(pol), math.Sin(pol)

	x := [3]float64{
		-cospsi*singha - sinpsi*cosgha*sindec,
		-cospsi*cosgha + sinpsi*singha*sindec,
		sinpsi * cosdec,
	}
	y := [3]float64{
		sinpsi*singha - cospsi*cosgha*sindec,
		sinpsi*cosgha + cospsi*singha*sindec,
		cospsi * cosdec,
	}

	d := s.response()
	var fplus, fcross float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			fplus += (x[i]*x[j] - y[i]*y[j]) * d[i][j]
			fcross += (x[i]*y[j] + y[i]*x[j]) * d[i][j]
		}
	}
	return fplus, fcross, nil
}

// TimeDelay projects the detector baseline onto the source direction.
// Positive means the wavefront reaches det after ref.
func (n *Network) TimeDelay(det, ref string, ra, dec float64, gps float64) (float64, error) {
	if det == ref {
		return 0, nil
	}
	a, err := lookup(det)
	if err != nil {
		return 0, err
	}
	b, err := lookup(ref)
	if err != nil {
		return 0, err
	}

	gha := gmst(gps) - ra
	cosdec := math.Cos(dec)
	// Unit vector pointing from the geocenter toward the source.
	src := [3]float64{
		cosdec * math.Cos(gha),
		-cosdec * math.Sin(gha),
		math.Sin(dec),
	}

	const c = 299792458.0
	var dot float64
	for i := 0; i < 3; i++ {
		dot += (b.loc[i] - a.loc[i]) * src[i]
	}
	return dot / c, nil
}

// gmstReference anchors the sidereal approximation: GPS seconds at the
// J2000 epoch, and the corresponding Greenwich mean sidereal angle.
const (
	gpsAtJ2000    = 630763213.0
	gmstAtJ2000   = 4.894961212735792    // radians
	earthRotation = 7.292115855306587e-5 // radians per second
)

// gmst approximates the Greenwich mean sidereal time, in radians, at the
// given GPS time.
func gmst(gps float64) float64 {
	angle := gmstAtJ2000 + earthRotation*(gps-gpsAtJ2000)
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}
