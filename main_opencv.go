//go:build opencv

package main

import _ "imagepad/imageprocessor/opencv"
