// Package deps checks that the external echosounder tools are installed.
package deps
