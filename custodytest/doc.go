// Package custodytest provides helpers shared by the tests of custody
// packages.
package custodytest
