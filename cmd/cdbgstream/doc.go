/*Command cdbgstream streams a FASTA or FASTQ file through a streaming
  compact de Bruijn graph and prints summary stats. Input arrives on
  stdin, or from a path given as the single positional argument.
  Format is chosen with -fastq; the default is FASTA.

  Usage: cat reads.fastq | cdbgstream -k 31 -fastq > /dev/null
*/
package main
