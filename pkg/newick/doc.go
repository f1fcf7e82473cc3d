/*
Package newick writes pruned taxonomies in Newick format and reads Newick
trees, for example GTDB reference trees.

An informal description of the format:
https://evolution.genetics.washington.edu/phylip/newicktree.html

Writer conventions:

  - internal node: (child1,child2,...)label:distance
  - leaf: label:distance
  - every tree statement ends with ';', a forest is written as one
    statement per line;
  - distances use the shortest decimal representation that round-trips
    to the same float64 value, unless a fixed precision is set;
  - labels with blanks or any of ()[]:;,' are single-quoted, quotes inside
    labels are doubled.
*/
package newick
