/*
Package corpus stores named chord progressions in a SQLite database and turns
them into Markov models.

Progressions are appended to with Train (plain progression text) or
ImportProgression (JSON), and read back with Chords or ExportProgression.
Models are never persisted: BuildModel trains a new markov.Model from the
stored chords each time it is called.
*/
package corpus
