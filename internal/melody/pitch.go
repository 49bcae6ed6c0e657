package melody

// Equal-temperament pitches in Hz, rounded to the nearest integer.
const (
	rest = 0

	e2  = 82
	as2 = 117
	b2  = 123
	c3  = 131
	d3  = 147
	e3  = 165

	c4  = 262
	cs4 = 277
	d4  = 294
	ds4 = 311
	e4  = 330
	f4  = 349
	fs4 = 370
	g4  = 392
	gs4 = 415
	a4  = 440
	as4 = 466
	b4  = 494

	c5  = 523
	cs5 = 554
	d5  = 587
	ds5 = 622
	e5  = 659
	f5  = 698
	fs5 = 740
	g5  = 784
	a5  = 880

	c6 = 1047
)
